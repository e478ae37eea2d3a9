package form

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// Form field names shared by the templates and the decoder.
const (
	FieldMode      = "form_mode"
	FieldModelID   = "model_id"
	FieldName      = "name"
	FieldType      = "model_type"
	FieldSchedule  = "schedule_interval"
	FieldEnabled   = "enabled"
	FieldTagKey    = "tag_key"
	FieldTagValue  = "tag_value"
	FieldNewKey    = "new_tag_key"
	FieldNewValue  = "new_tag_value"
	FieldOrigOrder = "original_step_order"

	StepName        = "name"
	StepOrder       = "step_order"
	StepQuery       = "query"
	StepDestination = "destination_name"
	StepWrite       = "write_mechanism"
	StepPrimaryKeys = "primary_keys"
	StepPartition   = "partition_keys"
	StepSortKeys    = "sort_keys"
	StepSchemaName  = "schema_name"
	StepSchemaType  = "schema_type"
	StepSchemaOrig  = "schema_orig"

	// StepPrefix prefixes the fields of the standalone step form.
	StepPrefix = "step."
)

// Form modes select which page an editor action re-renders.
const (
	ModeModel = "model"
	ModeStep  = "step"
)

// Action is an editor action posted to /forms/{action}.
type Action string

// Editor actions.
const (
	ActionAddTag      Action = "add-tag"
	ActionRemoveTag   Action = "remove-tag"
	ActionAddStep     Action = "add-step"
	ActionRemoveStep  Action = "remove-step"
	ActionAddField    Action = "add-field"
	ActionRemoveField Action = "remove-field"
	ActionRefresh     Action = "refresh"
)

// ErrUnknownAction is returned for actions a draft does not support.
var ErrUnknownAction = errors.New("unknown form action")

// StepFieldPrefix returns the field prefix of step i in the model form.
func StepFieldPrefix(i int) string {
	return "steps." + strconv.Itoa(i) + "."
}

// ModelDraft is the state of the model create/edit form.
type ModelDraft struct {
	// ModelID is empty while creating.
	ModelID     string
	Input       core.ModelInput
	NewTagKey   string
	NewTagValue string
	Errors      Errors

	// renames holds the schema renames of each submitted step, by index.
	renames []Renames
}

// NewModelDraft returns the draft for the create form.
func NewModelDraft() *ModelDraft {
	return &ModelDraft{Input: NewModelInput(), Errors: Errors{}}
}

// EditModelDraft returns the draft for editing m.
func EditModelDraft(m *core.Model) *ModelDraft {
	return &ModelDraft{ModelID: m.ID, Input: m.Input(), Errors: Errors{}}
}

// Editing reports whether the draft edits an existing model.
func (d *ModelDraft) Editing() bool {
	return d.ModelID != ""
}

// DecodeModelDraft reads a model draft from submitted form values.
func DecodeModelDraft(v url.Values) *ModelDraft {
	d := &ModelDraft{
		ModelID:     v.Get(FieldModelID),
		NewTagKey:   v.Get(FieldNewKey),
		NewTagValue: v.Get(FieldNewValue),
		Errors:      Errors{},
		Input: core.ModelInput{
			Name:             v.Get(FieldName),
			ModelType:        v.Get(FieldType),
			Enabled:          v.Has(FieldEnabled),
			ScheduleInterval: v.Get(FieldSchedule),
			Tags:             decodeTags(v),
			Steps:            []core.Step{},
		},
	}
	if d.Input.ModelType == "" {
		d.Input.ModelType = core.ModelTypeRedshift
	}

	for _, i := range stepIndexes(v) {
		s, renames := decodeStep(v, StepFieldPrefix(i), d.ModelID)
		d.Input.Steps = append(d.Input.Steps, s)
		d.renames = append(d.renames, renames)
	}
	return d
}

// Apply runs an editor action. params carries the action arguments
// (key, index, step, field).
func (d *ModelDraft) Apply(action Action, params url.Values) error {
	switch action {
	case ActionAddTag:
		tags, ok := AddTag(d.Input.Tags, d.NewTagKey, d.NewTagValue)
		if ok {
			d.Input.Tags = tags
			d.NewTagKey, d.NewTagValue = "", ""
		}
	case ActionRemoveTag:
		d.Input.Tags = RemoveTag(d.Input.Tags, params.Get("key"))
	case ActionAddStep:
		d.Input.Steps = AddStep(d.Input.Steps, d.ModelID)
	case ActionRemoveStep:
		i, err := intParam(params, "index")
		if err != nil {
			return err
		}
		d.Input.Steps = RemoveStep(d.Input.Steps, i)
	case ActionAddField, ActionRemoveField:
		i, err := intParam(params, "step")
		if err != nil {
			return err
		}
		if i < 0 || i >= len(d.Input.Steps) {
			return fmt.Errorf("step %d out of range", i)
		}
		s := d.Input.Steps[i]
		if action == ActionAddField {
			s = AddSchemaField(s)
		} else {
			s = RemoveSchemaField(s, d.stepRenames(i).Resolve(params.Get("field")))
		}
		d.Input.Steps = UpdateStep(d.Input.Steps, i, s)
	case ActionRefresh:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Validate checks the required fields and records errors on the draft.
func (d *ModelDraft) Validate() bool {
	if strings.TrimSpace(d.Input.Name) == "" {
		d.Errors.Add(FieldName, "Model name is required")
	}
	if strings.TrimSpace(d.Input.ScheduleInterval) == "" {
		d.Errors.Add(FieldSchedule, "Schedule is required")
	}
	return !d.Errors.Any()
}

func (d *ModelDraft) stepRenames(i int) Renames {
	if i < len(d.renames) {
		return d.renames[i]
	}
	return nil
}

// StepDraft is the state of the standalone step create/edit form.
type StepDraft struct {
	ModelID string
	// OriginalOrder is the step order being edited, nil while creating.
	OriginalOrder *int
	Step          core.Step
	Errors        Errors

	renames Renames
}

// NewStepDraft returns the draft for adding a step to m.
func NewStepDraft(m *core.Model) *StepDraft {
	return &StepDraft{ModelID: m.ID, Step: NewStep(m.ID, len(m.Steps)), Errors: Errors{}}
}

// EditStepDraft returns the draft for editing s.
func EditStepDraft(s core.Step) *StepDraft {
	order := s.StepOrder
	return &StepDraft{ModelID: s.ModelID, OriginalOrder: &order, Step: s.Clone(), Errors: Errors{}}
}

// Editing reports whether the draft edits an existing step.
func (d *StepDraft) Editing() bool {
	return d.OriginalOrder != nil
}

// DecodeStepDraft reads a step draft from submitted form values.
func DecodeStepDraft(v url.Values) *StepDraft {
	d := &StepDraft{
		ModelID: v.Get(FieldModelID),
		Errors:  Errors{},
	}
	if raw := v.Get(FieldOrigOrder); raw != "" {
		order := parseOrder(raw)
		d.OriginalOrder = &order
	}
	d.Step, d.renames = decodeStep(v, StepPrefix, d.ModelID)
	return d
}

// Apply runs a schema editor action on the step.
func (d *StepDraft) Apply(action Action, params url.Values) error {
	switch action {
	case ActionAddField:
		d.Step = AddSchemaField(d.Step)
	case ActionRemoveField:
		d.Step = RemoveSchemaField(d.Step, d.renames.Resolve(params.Get("field")))
	case ActionRefresh:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Validate checks the required fields and records errors on the draft.
func (d *StepDraft) Validate() bool {
	if strings.TrimSpace(d.Step.Name) == "" {
		d.Errors.Add(StepPrefix+StepName, "Step name is required")
	}
	return !d.Errors.Any()
}

// DecodeStep reads one step whose fields share prefix.
//
// Schema rows are decoded against the keys they were rendered with: the
// types are set under the original keys first, then the rows whose name
// changed are renamed together.
func DecodeStep(v url.Values, prefix, modelID string) core.Step {
	s, _ := decodeStep(v, prefix, modelID)
	return s
}

func decodeStep(v url.Values, prefix, modelID string) (core.Step, Renames) {
	s := core.Step{
		ModelID:         modelID,
		Name:            v.Get(prefix + StepName),
		StepOrder:       parseOrder(v.Get(prefix + StepOrder)),
		Query:           v.Get(prefix + StepQuery),
		DestinationName: v.Get(prefix + StepDestination),
		WriteMechanism:  v.Get(prefix + StepWrite),
		PrimaryKeys:     ParseKeyList(v.Get(prefix + StepPrimaryKeys)),
		PartitionKeys:   ParseKeyList(v.Get(prefix + StepPartition)),
		SortKeys:        ParseKeyList(v.Get(prefix + StepSortKeys)),
		Schema:          core.Mapping{},
	}
	if s.WriteMechanism == "" {
		s.WriteMechanism = core.WriteUpsert
	}

	names := v[prefix+StepSchemaName]
	types := v[prefix+StepSchemaType]
	origs := v[prefix+StepSchemaOrig]

	for i, orig := range origs {
		typ := core.FieldString
		if i < len(types) {
			typ = types[i]
		}
		s = SetSchemaType(s, orig, typ)
	}
	renames := Renames{}
	for i, orig := range origs {
		if i < len(names) && names[i] != orig {
			renames[orig] = names[i]
		}
	}
	return RenameSchemaFields(s, renames), renames
}

// EncodeStep writes s into v under prefix, the inverse of DecodeStep.
func EncodeStep(v url.Values, prefix string, s core.Step) {
	v.Set(prefix+StepName, s.Name)
	v.Set(prefix+StepOrder, strconv.Itoa(s.StepOrder))
	v.Set(prefix+StepQuery, s.Query)
	v.Set(prefix+StepDestination, s.DestinationName)
	v.Set(prefix+StepWrite, s.WriteMechanism)
	v.Set(prefix+StepPrimaryKeys, JoinKeys(s.PrimaryKeys))
	v.Set(prefix+StepPartition, JoinKeys(s.PartitionKeys))
	v.Set(prefix+StepSortKeys, JoinKeys(s.SortKeys))
	for _, e := range s.Schema {
		v.Add(prefix+StepSchemaName, e.Key)
		v.Add(prefix+StepSchemaType, e.Value)
		v.Add(prefix+StepSchemaOrig, e.Key)
	}
}

// EncodeModelDraft writes d into form values, the inverse of
// DecodeModelDraft.
func EncodeModelDraft(d *ModelDraft) url.Values {
	v := url.Values{}
	v.Set(FieldMode, ModeModel)
	v.Set(FieldModelID, d.ModelID)
	v.Set(FieldName, d.Input.Name)
	v.Set(FieldType, d.Input.ModelType)
	v.Set(FieldSchedule, d.Input.ScheduleInterval)
	if d.Input.Enabled {
		v.Set(FieldEnabled, "on")
	}
	for _, e := range d.Input.Tags {
		v.Add(FieldTagKey, e.Key)
		v.Add(FieldTagValue, e.Value)
	}
	v.Set(FieldNewKey, d.NewTagKey)
	v.Set(FieldNewValue, d.NewTagValue)
	for i, s := range d.Input.Steps {
		EncodeStep(v, StepFieldPrefix(i), s)
	}
	return v
}

// EncodeStepDraft writes d into form values, the inverse of
// DecodeStepDraft.
func EncodeStepDraft(d *StepDraft) url.Values {
	v := url.Values{}
	v.Set(FieldMode, ModeStep)
	v.Set(FieldModelID, d.ModelID)
	if d.OriginalOrder != nil {
		v.Set(FieldOrigOrder, strconv.Itoa(*d.OriginalOrder))
	}
	EncodeStep(v, StepPrefix, d.Step)
	return v
}

func decodeTags(v url.Values) core.Mapping {
	tags := core.Mapping{}
	keys := v[FieldTagKey]
	values := v[FieldTagValue]
	for i, k := range keys {
		if i < len(values) {
			tags = tags.Set(k, values[i])
		}
	}
	return tags
}

// stepIndexes returns the distinct step indexes present in v, ascending.
func stepIndexes(v url.Values) []int {
	seen := make(map[int]bool)
	var idx []int
	for key := range v {
		rest, ok := strings.CutPrefix(key, "steps.")
		if !ok {
			continue
		}
		n, _, ok := strings.Cut(rest, ".")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(n)
		if err != nil || i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// parseOrder parses a step order. Input that is not an integer yields 0.
func parseOrder(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func intParam(params url.Values, name string) (int, error) {
	n, err := strconv.Atoi(params.Get(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", name, params.Get(name))
	}
	return n, nil
}
