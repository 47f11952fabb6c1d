package ast

import "fmt"

// ActionType identifies what an action does when its policy triggers.
// The engine never performs these itself; it returns the ordered, filtered
// action list for a collaborator to execute.
type ActionType string

const (
	// ActionTypeFlag marks the subject entity for moderation review.
	ActionTypeFlag ActionType = "flag"

	// ActionTypeNotify sends a notification to a user or channel.
	ActionTypeNotify ActionType = "notify"

	// ActionTypeRestrict removes a capability from the subject for a period.
	ActionTypeRestrict ActionType = "restrict"

	// ActionTypeAdjustReputation applies a reputation delta to the subject.
	ActionTypeAdjustReputation ActionType = "adjust_reputation"

	// ActionTypeEscalate routes the case to a review queue.
	ActionTypeEscalate ActionType = "escalate"

	// ActionTypeLog records an event without any other effect.
	ActionTypeLog ActionType = "log"
)

// Action is a single enforcement step attached to a policy. Order fixes the
// execution sequence within one evaluation; actions are deduplicated by ID.
type Action struct {
	ID         string         `yaml:"id" json:"id"`
	Type       ActionType     `yaml:"type" json:"type"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Order      int            `yaml:"order" json:"order"`
	Active     bool           `yaml:"active" json:"isActive"`

	// Conditions gate the action against the evaluation context. When they
	// fail and Fallback is set, the fallback action is selected instead.
	Conditions []*ConditionNode `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Fallback   *Action          `yaml:"fallback_action,omitempty" json:"fallbackAction,omitempty"`
}

// IsActive reports whether the action is eligible for selection.
func (a *Action) IsActive() bool {
	return a.Active
}

// Clone returns a deep copy of the action, including its fallback chain.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	clone := *a
	if len(a.Parameters) > 0 {
		clone.Parameters = make(map[string]any, len(a.Parameters))
		for k, v := range a.Parameters {
			clone.Parameters[k] = v
		}
	}
	if len(a.Conditions) > 0 {
		clone.Conditions = make([]*ConditionNode, len(a.Conditions))
		for i, cond := range a.Conditions {
			clone.Conditions[i] = cond.Clone()
		}
	}
	clone.Fallback = a.Fallback.Clone()
	return &clone
}

// ActionParams is the decoded, typed form of an action's parameter bag.
// Each action type has exactly one parameter struct; DecodeParams selects it
// by the action's type tag. Decoding runs once at activation time.
type ActionParams interface {
	actionParams()
}

// FlagParams configures a flag action.
type FlagParams struct {
	Severity string // "low", "medium", "high"
	Reason   string
}

// NotifyParams configures a notify action.
type NotifyParams struct {
	Channel   string // "email", "in_app", "webhook"
	Template  string
	Recipient string
}

// RestrictParams configures a restrict action.
type RestrictParams struct {
	Capability    string // e.g. "post_project", "submit_application"
	DurationHours int    // 0 means indefinite
}

// ReputationParams configures an adjust_reputation action.
type ReputationParams struct {
	Delta  int
	Reason string
}

// EscalateParams configures an escalate action.
type EscalateParams struct {
	Queue    string
	Priority string // "normal", "urgent"
}

// LogParams configures a log action.
type LogParams struct {
	Level   string // "debug", "info", "warn", "error"
	Message string
}

func (FlagParams) actionParams()       {}
func (NotifyParams) actionParams()     {}
func (RestrictParams) actionParams()   {}
func (ReputationParams) actionParams() {}
func (EscalateParams) actionParams()   {}
func (LogParams) actionParams()        {}

// DecodeParams decodes the action's raw parameter bag into the typed struct
// for its action type. Unknown action types and missing required parameters
// are errors; the validator surfaces them before activation.
func DecodeParams(a *Action) (ActionParams, error) {
	switch a.Type {
	case ActionTypeFlag:
		p := FlagParams{
			Severity: stringParam(a.Parameters, "severity"),
			Reason:   stringParam(a.Parameters, "reason"),
		}
		switch p.Severity {
		case "low", "medium", "high":
		default:
			return nil, fmt.Errorf("action %s: invalid severity %q", a.ID, p.Severity)
		}
		return p, nil

	case ActionTypeNotify:
		p := NotifyParams{
			Channel:   stringParam(a.Parameters, "channel"),
			Template:  stringParam(a.Parameters, "template"),
			Recipient: stringParam(a.Parameters, "recipient"),
		}
		if p.Channel == "" {
			return nil, fmt.Errorf("action %s: notify requires a channel", a.ID)
		}
		if p.Template == "" {
			return nil, fmt.Errorf("action %s: notify requires a template", a.ID)
		}
		return p, nil

	case ActionTypeRestrict:
		p := RestrictParams{
			Capability:    stringParam(a.Parameters, "capability"),
			DurationHours: intParam(a.Parameters, "duration_hours"),
		}
		if p.Capability == "" {
			return nil, fmt.Errorf("action %s: restrict requires a capability", a.ID)
		}
		if p.DurationHours < 0 {
			return nil, fmt.Errorf("action %s: duration_hours cannot be negative", a.ID)
		}
		return p, nil

	case ActionTypeAdjustReputation:
		if _, ok := numberParam(a.Parameters, "delta"); !ok {
			return nil, fmt.Errorf("action %s: adjust_reputation requires a numeric delta", a.ID)
		}
		return ReputationParams{
			Delta:  intParam(a.Parameters, "delta"),
			Reason: stringParam(a.Parameters, "reason"),
		}, nil

	case ActionTypeEscalate:
		p := EscalateParams{
			Queue:    stringParam(a.Parameters, "queue"),
			Priority: stringParam(a.Parameters, "priority"),
		}
		if p.Queue == "" {
			return nil, fmt.Errorf("action %s: escalate requires a queue", a.ID)
		}
		if p.Priority == "" {
			p.Priority = "normal"
		}
		return p, nil

	case ActionTypeLog:
		p := LogParams{
			Level:   stringParam(a.Parameters, "level"),
			Message: stringParam(a.Parameters, "message"),
		}
		if p.Level == "" {
			p.Level = "info"
		}
		switch p.Level {
		case "debug", "info", "warn", "error":
		default:
			return nil, fmt.Errorf("action %s: invalid log level %q", a.ID, p.Level)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("action %s: unknown action type %q", a.ID, a.Type)
	}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func numberParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func intParam(params map[string]any, key string) int {
	n, _ := numberParam(params, key)
	return int(n)
}
