package lint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/pkg/core"
)

func validModel() *core.Model {
	return &core.Model{
		ID:               "m",
		Name:             "Orders",
		ModelType:        core.ModelTypeSnowflake,
		Enabled:          true,
		ScheduleInterval: "0 0 * * *",
		Steps: []core.Step{
			{
				Name:            "Load",
				StepOrder:       0,
				DestinationName: "orders",
				Schema:          core.MappingOf("order_id", "string", "placed_at", "timestamp"),
				WriteMechanism:  core.WriteUpsert,
				PrimaryKeys:     []string{"order_id"},
				SortKeys:        []string{"placed_at"},
			},
		},
	}
}

func ruleIDs(diags []Diagnostic) []string {
	ids := make([]string, len(diags))
	for i, d := range diags {
		ids[i] = d.RuleID
	}
	return ids
}

func TestAnalyze_SamplesAreClean(t *testing.T) {
	for _, m := range store.SampleModels() {
		assert.Empty(t, Analyze(m), "model %s", m.Name)
	}
}

func TestAnalyze_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *core.Model)
		want   []string
	}{
		{
			name:   "valid",
			mutate: func(*core.Model) {},
			want:   []string{},
		},
		{
			name:   "invalid schedule",
			mutate: func(m *core.Model) { m.ScheduleInterval = "whenever" },
			want:   []string{"MS01"},
		},
		{
			name:   "unknown model type",
			mutate: func(m *core.Model) { m.ModelType = "ORACLE" },
			want:   []string{"MS02"},
		},
		{
			name: "duplicate order",
			mutate: func(m *core.Model) {
				s := m.Steps[0].Clone()
				s.Name = "Again"
				m.Steps = append(m.Steps, s)
			},
			want: []string{"ST01"},
		},
		{
			name:   "gap",
			mutate: func(m *core.Model) { m.Steps = append(m.Steps, withOrder(m.Steps[0], 3)) },
			want:   []string{"ST02"},
		},
		{
			name:   "unknown write mechanism",
			mutate: func(m *core.Model) { m.Steps[0].WriteMechanism = "MERGE" },
			want:   []string{"ST03"},
		},
		{
			name:   "upsert without keys",
			mutate: func(m *core.Model) { m.Steps[0].PrimaryKeys = nil },
			want:   []string{"ST04"},
		},
		{
			name:   "unknown field type",
			mutate: func(m *core.Model) { m.Steps[0].Schema = m.Steps[0].Schema.Set("extra", "decimal") },
			want:   []string{"SC01"},
		},
		{
			name:   "key not in schema",
			mutate: func(m *core.Model) { m.Steps[0].PartitionKeys = []string{"region"} },
			want:   []string{"SC02"},
		},
		{
			name: "empty schema",
			mutate: func(m *core.Model) {
				m.Steps[0].Schema = nil
				m.Steps[0].PrimaryKeys = []string{"id"}
				m.Steps[0].SortKeys = nil
			},
			want: []string{"SC02", "SC03"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(m)
			assert.ElementsMatch(t, tt.want, ruleIDs(Analyze(m)))
		})
	}
}

func withOrder(s core.Step, order int) core.Step {
	s = s.Clone()
	s.StepOrder = order
	return s
}

func TestAnalyze_ModelFindingsFirst(t *testing.T) {
	m := validModel()
	m.ModelType = "ORACLE"
	m.Steps[0].WriteMechanism = "MERGE"
	m.Steps = append(m.Steps, withOrder(m.Steps[0], 1))
	m.Steps[1].Schema = m.Steps[1].Schema.Set("x", "blob")

	diags := Analyze(m)
	require.Len(t, diags, 4)
	assert.Nil(t, diags[0].Step)
	require.NotNil(t, diags[1].Step)
	assert.Equal(t, 0, *diags[1].Step)
	assert.Equal(t, 1, *diags[3].Step)
}

func TestAnalyzer_DisableAndOverride(t *testing.T) {
	m := validModel()
	m.ModelType = "ORACLE"
	m.Steps[0].WriteMechanism = "MERGE"

	a := NewAnalyzer()
	a.Disable("st03")
	a.Override("MS02", SeverityError)

	diags := a.Analyze(m)
	require.Len(t, diags, 1)
	assert.Equal(t, "MS02", diags[0].RuleID)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.True(t, HasErrors(diags))
}

func TestAnalyze_Nil(t *testing.T) {
	assert.Nil(t, Analyze(nil))
}

func TestDiagnosticJSON(t *testing.T) {
	order := 2
	b, err := json.Marshal(Diagnostic{RuleID: "ST03", Severity: SeverityWarning, Message: "x", Step: &order})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rule_id":"ST03","severity":"warning","message":"x","step":2}`, string(b))
}

func TestDiagnosticString(t *testing.T) {
	order := 1
	assert.Equal(t, "warning [ST03] step 1: bad", Diagnostic{RuleID: "ST03", Severity: SeverityWarning, Message: "bad", Step: &order}.String())
	assert.Equal(t, "error [MS01] bad", Diagnostic{RuleID: "MS01", Severity: SeverityError, Message: "bad"}.String())
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity("ERROR")
	assert.True(t, ok)
	assert.Equal(t, SeverityError, sev)

	sev, ok = ParseSeverity("loud")
	assert.False(t, ok)
	assert.Equal(t, SeverityWarning, sev)
}

func TestRules(t *testing.T) {
	rules := Rules()
	require.NotEmpty(t, rules)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].ID, rules[i].ID)
	}

	r, ok := RuleByID("sc02")
	require.True(t, ok)
	assert.Equal(t, "key-not-in-schema", r.Name)
}
