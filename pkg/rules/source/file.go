package source

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/parser"
	"github.com/offerhub/verdict/pkg/rules/registry"
)

// FileSource loads definitions from a YAML file or a directory of YAML
// files into a registry.
type FileSource struct {
	path   string
	parser *parser.Parser
	logger *slog.Logger
}

// NewFileSource creates a file source for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:   path,
		parser: parser.NewParser(),
		logger: slog.Default().With("component", "source.file", "path", path),
	}
}

// Load parses the definitions and registers them. Policies carrying an
// active status in the file go through the activation gate, so a file
// declaring an invalid active set fails the load.
func (s *FileSource) Load(reg *registry.Registry, actor string) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("definitions path: %w", err)
	}

	var file *parser.DefinitionFile
	if info.IsDir() {
		file, err = s.parser.ParseDir(s.path)
	} else {
		file, err = s.parser.Parse(s.path)
	}
	if err != nil {
		return err
	}

	return Register(reg, file, actor)
}

// Register saves a parsed definition set into a registry. Definitions
// are saved in draft form first; activation runs afterwards so
// prerequisites registered later in the file still resolve.
func Register(reg *registry.Registry, file *parser.DefinitionFile, actor string) error {
	var activatePolicies []string
	var enableFeatures []string

	for _, policy := range file.Policies {
		wantActive := policy.Active || policy.Status == ast.StatusActive
		draft := policy.Clone()
		draft.Status = ast.StatusDraft
		draft.Active = false
		if err := reg.SavePolicy(draft, actor); err != nil {
			return err
		}
		if wantActive {
			activatePolicies = append(activatePolicies, policy.ID)
		}
	}

	for _, feature := range file.Features {
		wantActive := feature.Active
		draft := feature.Clone()
		draft.Active = false
		if err := reg.SaveFeature(draft, actor); err != nil {
			return err
		}
		if wantActive {
			enableFeatures = append(enableFeatures, feature.Key)
		}
	}

	// Activation runs to a fixpoint so policies listed before their
	// prerequisites still activate.
	pending := activatePolicies
	for len(pending) > 0 {
		var stuck []string
		var lastErr error
		for _, id := range pending {
			if err := reg.ActivatePolicy(id, actor); err != nil {
				stuck = append(stuck, id)
				lastErr = err
			}
		}
		if len(stuck) == len(pending) {
			return lastErr
		}
		pending = stuck
	}
	for _, key := range enableFeatures {
		if err := reg.EnableFeature(key, actor); err != nil {
			return err
		}
	}

	return nil
}

// MemorySource serves a fixed definition set.
type MemorySource struct {
	file *parser.DefinitionFile
}

// NewMemorySource creates a source over in-memory definitions.
func NewMemorySource(file *parser.DefinitionFile) *MemorySource {
	return &MemorySource{file: file}
}

// Load registers the definitions.
func (s *MemorySource) Load(reg *registry.Registry, actor string) error {
	return Register(reg, s.file, actor)
}
