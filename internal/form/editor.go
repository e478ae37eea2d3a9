// Package form holds the editable drafts behind the model and step forms.
//
// A draft lives entirely in the submitted HTML form. Each request decodes it,
// applies at most one editor action and renders it back; nothing is kept on
// the server until the form is submitted.
package form

import (
	"strings"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// NewFieldName is the key used for a freshly added schema field.
const NewFieldName = "new_field"

// NewModelInput returns the draft shown by the create form.
func NewModelInput() core.ModelInput {
	return core.ModelInput{
		ModelType:        core.ModelTypeRedshift,
		Enabled:          true,
		ScheduleInterval: "0 0 * * *",
		Tags:             core.Mapping{},
		Steps:            []core.Step{},
	}
}

// NewStep returns a placeholder step.
func NewStep(modelID string, order int) core.Step {
	return core.Step{
		ModelID:        modelID,
		Name:           "New Step",
		StepOrder:      order,
		Schema:         core.MappingOf("id", core.FieldString),
		WriteMechanism: core.WriteUpsert,
		PrimaryKeys:    []string{},
		PartitionKeys:  []string{},
		SortKeys:       []string{},
	}
}

// AddTag sets key to value when both are non-empty. The boolean reports
// whether the tags changed.
func AddTag(tags core.Mapping, key, value string) (core.Mapping, bool) {
	if key == "" || value == "" {
		return tags, false
	}
	return tags.Set(key, value), true
}

// RemoveTag deletes key from tags.
func RemoveTag(tags core.Mapping, key string) core.Mapping {
	return tags.Delete(key)
}

// AddSchemaField adds new_field typed string, overwriting an existing
// new_field.
func AddSchemaField(s core.Step) core.Step {
	s.Schema = s.Schema.Set(NewFieldName, core.FieldString)
	return s
}

// RemoveSchemaField deletes key from the step schema.
func RemoveSchemaField(s core.Step, key string) core.Step {
	s.Schema = s.Schema.Delete(key)
	return s
}

// RenameSchemaFields applies renames (old key to new key) as one edit.
// Fields keeping their key stay in place. Renamed fields move to the end in
// schema order; a later field wins when two end up with the same name.
func RenameSchemaFields(s core.Step, renames Renames) core.Step {
	kept := core.Mapping{}
	var moved []core.Entry
	for _, e := range s.Schema {
		if to, ok := renames[e.Key]; ok && to != e.Key {
			moved = append(moved, core.Entry{Key: to, Value: e.Value})
			continue
		}
		kept = kept.Set(e.Key, e.Value)
	}
	for _, e := range moved {
		kept = kept.Set(e.Key, e.Value)
	}
	s.Schema = kept
	return s
}

// Renames maps the key a schema row was rendered with to its submitted name.
type Renames map[string]string

// Resolve returns the current name of the field rendered as key.
func (r Renames) Resolve(key string) string {
	if to, ok := r[key]; ok {
		return to
	}
	return key
}

// SetSchemaType sets the type of key.
func SetSchemaType(s core.Step, key, typ string) core.Step {
	s.Schema = s.Schema.Set(key, typ)
	return s
}

// AddStep appends a placeholder step ordered after the existing ones.
func AddStep(steps []core.Step, modelID string) []core.Step {
	out := make([]core.Step, 0, len(steps)+1)
	out = append(out, steps...)
	return append(out, NewStep(modelID, len(steps)))
}

// RemoveStep drops the step at index i. Remaining steps keep their orders.
func RemoveStep(steps []core.Step, i int) []core.Step {
	out := make([]core.Step, 0, len(steps))
	for j, s := range steps {
		if j != i {
			out = append(out, s)
		}
	}
	return out
}

// UpdateStep replaces the step at index i.
func UpdateStep(steps []core.Step, i int, s core.Step) []core.Step {
	out := make([]core.Step, len(steps))
	copy(out, steps)
	if i >= 0 && i < len(out) {
		out[i] = s
	}
	return out
}

// ParseKeyList splits comma separated input into trimmed, non-empty keys.
func ParseKeyList(s string) []string {
	keys := []string{}
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// JoinKeys renders a key list for a text input.
func JoinKeys(keys []string) string {
	return strings.Join(keys, ", ")
}
