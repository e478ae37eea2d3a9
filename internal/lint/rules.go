package lint

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/metastore/internal/schedule"
	"github.com/leapstack-labs/metastore/pkg/core"
)

var builtin = []Rule{
	{
		ID:          "MS01",
		Name:        "invalid-schedule",
		Description: "Schedule interval must be a valid cron expression",
		Severity:    SeverityError,
		Check:       checkSchedule,
	},
	{
		ID:          "MS02",
		Name:        "unknown-model-type",
		Description: "Model type should be one of the supported warehouses",
		Severity:    SeverityWarning,
		Check:       checkModelType,
	},
	{
		ID:          "ST01",
		Name:        "duplicate-step-order",
		Description: "Two steps share the same step order",
		Severity:    SeverityError,
		Check:       checkDuplicateOrders,
	},
	{
		ID:          "ST02",
		Name:        "step-order-gap",
		Description: "Step orders should be contiguous",
		Severity:    SeverityWarning,
		Check:       checkOrderGaps,
	},
	{
		ID:          "ST03",
		Name:        "unknown-write-mechanism",
		Description: "Write mechanism should be UPSERT, APPEND or OVERWRITE",
		Severity:    SeverityWarning,
		Check:       checkWriteMechanism,
	},
	{
		ID:          "ST04",
		Name:        "upsert-without-primary-key",
		Description: "UPSERT steps need a primary key to match rows",
		Severity:    SeverityWarning,
		Check:       checkUpsertKeys,
	},
	{
		ID:          "SC01",
		Name:        "unknown-field-type",
		Description: "Schema field types should be one of the supported types",
		Severity:    SeverityWarning,
		Check:       checkFieldTypes,
	},
	{
		ID:          "SC02",
		Name:        "key-not-in-schema",
		Description: "Primary, partition and sort keys should name schema fields",
		Severity:    SeverityWarning,
		Check:       checkKeysInSchema,
	},
	{
		ID:          "SC03",
		Name:        "empty-schema",
		Description: "A step without schema fields describes nothing",
		Severity:    SeverityInfo,
		Check:       checkEmptySchema,
	},
}

func stepDiag(s core.Step, format string, args ...any) Diagnostic {
	order := s.StepOrder
	return Diagnostic{Message: fmt.Sprintf(format, args...), Step: &order}
}

func checkSchedule(m *core.Model) []Diagnostic {
	if err := schedule.Validate(m.ScheduleInterval); err != nil {
		return []Diagnostic{{Message: err.Error()}}
	}
	return nil
}

func checkModelType(m *core.Model) []Diagnostic {
	if core.IsKnown(core.ModelTypes, m.ModelType) {
		return nil
	}
	return []Diagnostic{{Message: fmt.Sprintf("unknown model type %q", m.ModelType)}}
}

func checkDuplicateOrders(m *core.Model) []Diagnostic {
	seen := make(map[int]string)
	var diags []Diagnostic
	for _, s := range m.SortedSteps() {
		if prev, ok := seen[s.StepOrder]; ok {
			diags = append(diags, stepDiag(s, "step %q has the same order as %q", s.Name, prev))
			continue
		}
		seen[s.StepOrder] = s.Name
	}
	return diags
}

func checkOrderGaps(m *core.Model) []Diagnostic {
	orders := make([]int, 0, len(m.Steps))
	seen := make(map[int]bool)
	for _, s := range m.Steps {
		if !seen[s.StepOrder] {
			seen[s.StepOrder] = true
			orders = append(orders, s.StepOrder)
		}
	}
	sort.Ints(orders)

	var diags []Diagnostic
	for i := 1; i < len(orders); i++ {
		if orders[i] != orders[i-1]+1 {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("step orders jump from %d to %d", orders[i-1], orders[i]),
			})
		}
	}
	return diags
}

func checkWriteMechanism(m *core.Model) []Diagnostic {
	var diags []Diagnostic
	for _, s := range m.SortedSteps() {
		if !core.IsKnown(core.WriteMechanisms, s.WriteMechanism) {
			diags = append(diags, stepDiag(s, "unknown write mechanism %q", s.WriteMechanism))
		}
	}
	return diags
}

func checkUpsertKeys(m *core.Model) []Diagnostic {
	var diags []Diagnostic
	for _, s := range m.SortedSteps() {
		if s.WriteMechanism == core.WriteUpsert && len(s.PrimaryKeys) == 0 {
			diags = append(diags, stepDiag(s, "step %q upserts without primary keys", s.Name))
		}
	}
	return diags
}

func checkFieldTypes(m *core.Model) []Diagnostic {
	var diags []Diagnostic
	for _, s := range m.SortedSteps() {
		for _, e := range s.Schema {
			if !core.IsKnown(core.FieldTypes, e.Value) {
				diags = append(diags, stepDiag(s, "field %q has unknown type %q", e.Key, e.Value))
			}
		}
	}
	return diags
}

func checkKeysInSchema(m *core.Model) []Diagnostic {
	var diags []Diagnostic
	for _, s := range m.SortedSteps() {
		lists := []struct {
			kind string
			keys []string
		}{
			{"primary", s.PrimaryKeys},
			{"partition", s.PartitionKeys},
			{"sort", s.SortKeys},
		}
		for _, l := range lists {
			for _, k := range l.keys {
				if !s.Schema.Has(k) {
					diags = append(diags, stepDiag(s, "%s key %q is not a schema field", l.kind, k))
				}
			}
		}
	}
	return diags
}

func checkEmptySchema(m *core.Model) []Diagnostic {
	var diags []Diagnostic
	for _, s := range m.SortedSteps() {
		if s.Schema.Len() == 0 {
			diags = append(diags, stepDiag(s, "step %q has no schema fields", s.Name))
		}
	}
	return diags
}
