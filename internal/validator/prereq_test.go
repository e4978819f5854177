package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/internal/object"
)

func indexOf(summaries ...object.Summary) IndexLoader {
	index := make(map[string]object.Summary, len(summaries))
	for _, s := range summaries {
		index[s.ID] = s
	}
	return func(string) (map[string]object.Summary, error) {
		return index, nil
	}
}

func TestValidateExistenceEmptyListIsNoop(t *testing.T) {
	calls := 0
	v := New(func(string) (map[string]object.Summary, error) {
		calls++
		return nil, nil
	})
	var c object.Collector
	v.ValidateExistence(nil, "/root", &c)
	v.ValidateExistence([]string{}, "/root", &c)
	assert.True(t, c.Empty())
	assert.Zero(t, calls, "index must not load for empty lists")
}

func TestValidateExistenceCrossSystem(t *testing.T) {
	// A standalone task referencing a hierarchical task's id validates once
	// that task exists, regardless of addressing system.
	v := New(indexOf(
		object.Summary{ID: "fix-redirect", Kind: object.KindTask, Parent: "login", Status: object.StatusOpen},
		object.Summary{ID: "auth", Kind: object.KindEpic, Parent: "website", Status: object.StatusDraft},
	))
	var c object.Collector
	v.ValidateExistence([]string{"T-fix-redirect", "E-auth"}, "/root", &c)
	require.NoError(t, c.Err())
}

func TestValidateExistenceMissingObject(t *testing.T) {
	v := New(indexOf(object.Summary{ID: "real", Kind: object.KindTask, Status: object.StatusDone}))
	var c object.Collector
	v.ValidateExistence([]string{"T-real", "T-ghost"}, "/root", &c)

	issues := c.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, object.CodePrerequisiteMissing, issues[0].Code)
	assert.Equal(t, "prerequisite_existence", issues[0].Context["validation_type"])
	assert.Equal(t, true, issues[0].Context["cross_system_check"])
}

func TestValidateExistenceEmptyAndSecurityIssues(t *testing.T) {
	calls := 0
	v := New(func(string) (map[string]object.Summary, error) {
		calls++
		return map[string]object.Summary{}, nil
	})
	var c object.Collector
	v.ValidateExistence([]string{"  ", "../evil", "T-also-missing"}, "/root", &c)

	issues := c.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, object.CodeEmptyPrerequisiteID, issues[0].Code)
	assert.Equal(t, object.CodeSecurityValidation, issues[1].Code)
	assert.Equal(t, object.CodePrerequisiteMissing, issues[2].Code)
	assert.Equal(t, 1, calls)
}

func TestValidateExistenceSecurityOnlySkipsIndexLoad(t *testing.T) {
	calls := 0
	v := New(func(string) (map[string]object.Summary, error) {
		calls++
		return nil, nil
	})
	var c object.Collector
	v.ValidateExistence([]string{"../evil", "con"}, "/root", &c)
	assert.Len(t, c.Issues(), 2)
	assert.Zero(t, calls, "no id survived security; index load is pointless")
}

func TestValidateExistenceIndexLoadFailure(t *testing.T) {
	v := New(func(string) (map[string]object.Summary, error) {
		return nil, errors.New("disk on fire")
	})
	var c object.Collector
	v.ValidateExistence([]string{"T-a", "T-b", "T-c"}, "/root", &c)

	issues := c.Issues()
	require.Len(t, issues, 1, "one load-failure issue, not one per id")
	assert.Equal(t, object.CodeIndexLoadFailed, issues[0].Code)
	assert.Contains(t, issues[0].Message, "failed to load project objects")
}

func TestValidateExistenceDuplicatesValidatedIndependently(t *testing.T) {
	v := New(indexOf())
	var c object.Collector
	v.ValidateExistence([]string{"T-ghost", "T-ghost"}, "/root", &c)
	assert.Len(t, c.Issues(), 2)
}
