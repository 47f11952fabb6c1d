package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// DefinitionFile is the top-level structure of a definitions YAML file.
type DefinitionFile struct {
	Version  string               `yaml:"verdict_version"`
	Policies []*ast.Policy        `yaml:"policies"`
	Features []*ast.FeatureToggle `yaml:"features"`
}

// ParseError reports a failure to read or decode a definition file.
type ParseError struct {
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse %s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("parse: %s", e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Parser parses definition files into AST types.
type Parser struct {
	maxFileSize int64 // bytes, default 10MB
	maxDepth    int   // condition nesting, default 10
}

// NewParser creates a parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024,
		maxDepth:    10,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum condition nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse reads and parses one definition file.
func (p *Parser) Parse(path string) (*DefinitionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ParseError{File: path, Message: "cannot access file", Cause: err}
	}
	if info.Size() > p.maxFileSize {
		return nil, &ParseError{
			File:    path,
			Message: fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), p.maxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Message: "cannot read file", Cause: err}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses definition YAML from a byte slice. The source path
// only labels errors.
func (p *Parser) ParseBytes(data []byte, source string) (*DefinitionFile, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &ParseError{
			File:    source,
			Message: fmt.Sprintf("data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
		}
	}

	var file DefinitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{File: source, Message: "invalid YAML", Cause: err}
	}

	if err := p.checkDepths(&file, source); err != nil {
		return nil, err
	}

	return &file, nil
}

// ParseDir parses every .yaml and .yml file in a directory, in lexical
// order, and merges the results into a single definition set.
func (p *Parser) ParseDir(dir string) (*DefinitionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ParseError{File: dir, Message: "cannot read directory", Cause: err}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	merged := &DefinitionFile{}
	for _, path := range paths {
		file, err := p.Parse(path)
		if err != nil {
			return nil, err
		}
		if merged.Version == "" {
			merged.Version = file.Version
		}
		merged.Policies = append(merged.Policies, file.Policies...)
		merged.Features = append(merged.Features, file.Features...)
	}

	return merged, nil
}

func (p *Parser) checkDepths(file *DefinitionFile, source string) error {
	for _, policy := range file.Policies {
		for _, rule := range policy.Rules {
			for _, cond := range rule.Conditions {
				if depth(cond) > p.maxDepth {
					return &ParseError{
						File: source,
						Message: fmt.Sprintf("policy %q rule %q: condition nesting exceeds depth %d",
							policy.ID, rule.ID, p.maxDepth),
					}
				}
			}
		}
	}
	for _, feature := range file.Features {
		trees := feature.Conditions
		if feature.Audience != nil && feature.Audience.Criteria != nil {
			trees = append(trees, feature.Audience.Criteria)
		}
		for _, cond := range trees {
			if depth(cond) > p.maxDepth {
				return &ParseError{
					File: source,
					Message: fmt.Sprintf("feature %q: condition nesting exceeds depth %d",
						feature.Key, p.maxDepth),
				}
			}
		}
	}
	return nil
}

func depth(node *ast.ConditionNode) int {
	if node == nil {
		return 0
	}
	max := 0
	for _, child := range node.Children {
		if d := depth(child); d > max {
			max = d
		}
	}
	return max + 1
}
