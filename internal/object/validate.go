package object

import (
	"fmt"
	"strings"
)

// Issue codes used across validation.
const (
	CodeMissingRequiredField = "missing_required_field"
	CodeInvalidEnumValue     = "invalid_enum_value"
	CodeInvalidTransition    = "invalid_status_transition"
	CodeEmptyPrerequisiteID  = "empty_prerequisite_id"
	CodeSecurityValidation   = "security_validation_failed"
	CodePrerequisiteMissing  = "prerequisite_not_exist"
	CodeIndexLoadFailed      = "project_objects_load_failed"
)

// Issue is one validation failure found on an object.
type Issue struct {
	Message string
	Code    string
	Context map[string]any
}

// Collector accumulates validation issues for a single object so callers can
// surface every violation at once instead of failing on the first.
type Collector struct {
	issues []Issue
}

// Add records an issue. A nil context is fine.
func (c *Collector) Add(message, code string, context map[string]any) {
	c.issues = append(c.issues, Issue{Message: message, Code: code, Context: context})
}

// Addf records an issue with a formatted message and no context.
func (c *Collector) Addf(code string, format string, args ...any) {
	c.Add(fmt.Sprintf(format, args...), code, nil)
}

// Issues returns the recorded issues in insertion order.
func (c *Collector) Issues() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Empty reports whether no issues were recorded.
func (c *Collector) Empty() bool {
	return len(c.issues) == 0
}

// Err returns nil when the collector is empty, otherwise a *ValidationError
// carrying every recorded issue.
func (c *Collector) Err() error {
	if c.Empty() {
		return nil
	}
	return &ValidationError{Issues: c.Issues()}
}

// ValidationError aggregates every validation failure found on one object.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "object: validation failed: " + e.Issues[0].Message
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("object: validation failed (%d issues): %s", len(e.Issues), strings.Join(msgs, "; "))
}

// parentRequired captures the per-kind parent invariant: projects never have
// one, epics and features always do, tasks may go either way.
var parentRequired = map[Kind]bool{
	KindProject: false,
	KindEpic:    true,
	KindFeature: true,
	KindTask:    false,
}

// ValidateObject records structural violations of the object against the
// per-kind tables: required fields, parent invariants, and enum membership.
func ValidateObject(o *PlanningObject, c *Collector) {
	if !o.Kind.Valid() {
		c.Addf(CodeInvalidEnumValue, "invalid kind %q", string(o.Kind))
		return
	}
	if strings.TrimSpace(o.ID) == "" {
		c.Addf(CodeMissingRequiredField, "missing required field id for %s", o.Kind)
	}
	if parentRequired[o.Kind] && strings.TrimSpace(o.Parent) == "" {
		c.Addf(CodeMissingRequiredField, "missing required field parent for %s", o.Kind)
	}
	if o.Kind == KindProject && o.Parent != "" {
		c.Addf(CodeInvalidEnumValue, "project %s must not have a parent", o.ID)
	}
	if !StatusValidFor(o.Kind, o.Status) {
		c.Addf(CodeInvalidEnumValue, "invalid status %q for kind %s", string(o.Status), o.Kind)
	}
	if _, err := ParsePriority(string(o.Priority)); err != nil {
		c.Addf(CodeInvalidEnumValue, "invalid priority %q", string(o.Priority))
	}
}
