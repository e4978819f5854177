// Package validator checks prerequisite references against the full
// cross-system object index: a prerequisite is satisfied by any existing
// object, whether it lives in the hierarchy or the standalone namespace.
package validator

import (
	"strings"

	"trellis/internal/object"
	"trellis/internal/resolver"
)

// IndexLoader produces the id-to-summary index spanning both addressing
// systems. The object repository's full listing satisfies this.
type IndexLoader func(root string) (map[string]object.Summary, error)

// ExistenceValidator validates prerequisite ids for existence.
type ExistenceValidator struct {
	loadIndex IndexLoader
}

// New builds a validator over the given index loader.
func New(load IndexLoader) *ExistenceValidator {
	return &ExistenceValidator{loadIndex: load}
}

// ValidateExistence checks every prerequisite id and appends one issue per
// failure to the collector. It never returns an error itself; the caller
// raises the aggregate once all fields of the owning object are checked.
//
// Per id: whitespace is trimmed; an empty result records an
// empty-prerequisite issue. Ids then pass the same security validation as
// path resolution; failures record a security issue and skip the existence
// lookup. Surviving ids are cleaned of their kind prefix and looked up in the
// cross-system index. Duplicate ids are validated independently. If the index
// itself cannot be loaded, a single load-failure issue is recorded instead of
// per-id misses.
func (v *ExistenceValidator) ValidateExistence(ids []string, root string, c *object.Collector) {
	if len(ids) == 0 {
		return
	}
	type lookup struct {
		raw   string
		clean string
	}
	var lookups []lookup
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			c.Add("empty prerequisite id", object.CodeEmptyPrerequisiteID, nil)
			continue
		}
		clean := resolver.CleanID(trimmed)
		if err := resolver.ValidateID(clean); err != nil {
			c.Add("security validation failed for prerequisite "+trimmed+": "+err.Error(),
				object.CodeSecurityValidation,
				map[string]any{"prerequisite_id": trimmed})
			continue
		}
		lookups = append(lookups, lookup{raw: trimmed, clean: clean})
	}
	if len(lookups) == 0 {
		return
	}
	index, err := v.loadIndex(root)
	if err != nil {
		c.Add("failed to load project objects: "+err.Error(), object.CodeIndexLoadFailed, nil)
		return
	}
	for _, l := range lookups {
		if _, ok := index[l.clean]; ok {
			continue
		}
		c.Add("prerequisite "+l.raw+" does not exist",
			object.CodePrerequisiteMissing,
			map[string]any{
				"validation_type":    "prerequisite_existence",
				"cross_system_check": true,
				"prerequisite_id":    l.clean,
			})
	}
}
