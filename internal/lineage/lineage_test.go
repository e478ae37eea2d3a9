package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/pkg/core"
)

func names(steps []core.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name
	}
	return out
}

func step(name string, order int, dest, query string) core.Step {
	return core.Step{Name: name, StepOrder: order, DestinationName: dest, Query: query}
}

func TestReferences(t *testing.T) {
	refs := References("SELECT a.id FROM Analytics.Daily_Metrics a WHERE note = 'from raw_events'")
	assert.Contains(t, refs, "analytics.daily_metrics")
	assert.Contains(t, refs, "daily_metrics")
	assert.Contains(t, refs, "select")
	assert.NotContains(t, refs, "raw_events")
}

func TestBuild_SampleModel(t *testing.T) {
	m := store.SampleModels()[0]

	g, err := Build(m)
	require.NoError(t, err)

	assert.Empty(t, g.ReadsFrom(0))
	assert.Equal(t, []string{"Extract User Events"}, names(g.ReadsFrom(1)))
	assert.Equal(t, []string{"Aggregate Daily Metrics"}, names(g.ReadBy(0)))

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"Extract User Events", "Aggregate Daily Metrics"}, names(order))
}

func TestBuild_OrderFollowsDependencies(t *testing.T) {
	m := &core.Model{Steps: []core.Step{
		step("report", 0, "report", "SELECT * FROM summary"),
		step("summary", 1, "summary", "SELECT * FROM raw.events_clean"),
		step("clean", 2, "events_clean", "SELECT * FROM events"),
		step("other", 3, "other", "SELECT 1"),
	}}

	g, err := Build(m)
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	got := names(order)
	require.Len(t, got, 4)
	pos := make(map[string]int)
	for i, n := range got {
		pos[n] = i
	}
	assert.Less(t, pos["clean"], pos["summary"])
	assert.Less(t, pos["summary"], pos["report"])
	assert.Equal(t, []string{"clean"}, names(g.ReadsFrom(1)))
}

func TestBuild_CycleIsSkipped(t *testing.T) {
	m := &core.Model{Steps: []core.Step{
		step("a", 0, "table_a", "SELECT * FROM table_b"),
		step("b", 1, "table_b", "SELECT * FROM TABLE_A"),
	}}

	g, err := Build(m)
	require.NoError(t, err)
	require.Len(t, g.Skipped(), 1)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Len(t, order, 2)
}

func TestBuild_SelfReferenceIgnored(t *testing.T) {
	m := &core.Model{Steps: []core.Step{
		step("incremental", 0, "facts", "INSERT INTO facts SELECT * FROM facts_staging"),
	}}

	g, err := Build(m)
	require.NoError(t, err)
	assert.Empty(t, g.ReadsFrom(0))
	assert.Empty(t, g.Skipped())
}

func TestReadsFrom_UnknownOrder(t *testing.T) {
	g, err := Build(store.SampleModels()[1])
	require.NoError(t, err)
	assert.Empty(t, g.ReadsFrom(42))
}
