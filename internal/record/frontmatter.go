// Package record implements the on-disk text codec for planning objects: a
// YAML field block between `---` fences followed by a free-text body.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"trellis/internal/object"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("record: missing frontmatter")
	// ErrMalformedFrontMatter indicates the field block could not be parsed.
	ErrMalformedFrontMatter = errors.New("record: malformed frontmatter")
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Fields is the YAML field block persisted at the top of every record file.
type Fields struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title,omitempty"`
	Kind          string   `yaml:"kind"`
	Parent        string   `yaml:"parent,omitempty"`
	Status        string   `yaml:"status"`
	Priority      string   `yaml:"priority,omitempty"`
	Prerequisites []string `yaml:"prerequisites,omitempty"`
	Created       string   `yaml:"created"`
	Updated       string   `yaml:"updated"`
	Worktree      string   `yaml:"worktree,omitempty"`
	SchemaVersion string   `yaml:"schema_version,omitempty"`
}

// Parse extracts the field block and body from a document that starts with
// `---` YAML fences. CRLF line endings are normalized first.
func Parse(content []byte) (Fields, []byte, error) {
	if len(content) == 0 {
		return Fields{}, nil, ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Fields{}, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Fields{}, nil, ErrMalformedFrontMatter
	}
	var fields Fields
	if err := yaml.Unmarshal(parts[0], &fields); err != nil {
		return Fields{}, nil, fmt.Errorf("record: parse frontmatter: %w", err)
	}
	if fields.ID == "" || fields.Kind == "" {
		return Fields{}, nil, ErrMalformedFrontMatter
	}
	body := bytes.TrimPrefix(parts[1], []byte("\n"))
	return fields, body, nil
}

// Encode renders the field block and body with YAML fences.
func Encode(fields Fields, body []byte) ([]byte, error) {
	if fields.ID == "" {
		return nil, fmt.Errorf("record: fields missing id")
	}
	if fields.Kind == "" {
		return nil, fmt.Errorf("record: fields missing kind")
	}
	data, err := yaml.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("record: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// ToObject converts parsed fields plus body into a planning object, validating
// every enum against its per-kind table.
func ToObject(fields Fields, body []byte) (*object.PlanningObject, error) {
	kind, err := object.ParseKind(fields.Kind)
	if err != nil {
		return nil, err
	}
	status, err := object.ParseStatus(kind, fields.Status)
	if err != nil {
		return nil, err
	}
	priority := object.PriorityNormal
	if fields.Priority != "" {
		priority, err = object.ParsePriority(fields.Priority)
		if err != nil {
			return nil, err
		}
	}
	created, err := parseTime(fields.Created)
	if err != nil {
		return nil, fmt.Errorf("record: parse created for %s: %w", fields.ID, err)
	}
	updated, err := parseTime(fields.Updated)
	if err != nil {
		return nil, fmt.Errorf("record: parse updated for %s: %w", fields.ID, err)
	}
	prereqs := make([]string, len(fields.Prerequisites))
	copy(prereqs, fields.Prerequisites)
	return &object.PlanningObject{
		ID:            fields.ID,
		Title:         fields.Title,
		Kind:          kind,
		Parent:        fields.Parent,
		Status:        status,
		Priority:      priority,
		Prerequisites: prereqs,
		Created:       created,
		Updated:       updated,
		Worktree:      fields.Worktree,
		SchemaVersion: fields.SchemaVersion,
		Body:          string(body),
	}, nil
}

// FromObject converts a planning object into its persisted field block.
func FromObject(o *object.PlanningObject) Fields {
	prereqs := make([]string, len(o.Prerequisites))
	copy(prereqs, o.Prerequisites)
	if len(prereqs) == 0 {
		prereqs = nil
	}
	return Fields{
		ID:            o.ID,
		Title:         o.Title,
		Kind:          string(o.Kind),
		Parent:        o.Parent,
		Status:        string(o.Status),
		Priority:      string(o.Priority),
		Prerequisites: prereqs,
		Created:       o.Created.UTC().Format(timeLayout),
		Updated:       o.Updated.UTC().Format(timeLayout),
		Worktree:      o.Worktree,
		SchemaVersion: o.SchemaVersion,
	}
}

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
