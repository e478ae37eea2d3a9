package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/pkg/core"
)

func TestBuildView_Samples(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC) // Monday

	v := BuildView(store.SampleModels(), now)

	assert.Equal(t, 3, v.Stats.TotalModels)
	assert.Equal(t, 2, v.Stats.EnabledModels)
	assert.Equal(t, 4, v.Stats.TotalSteps)

	// "0 */4 * * *" fires at 12:00, before the daily midnight run.
	require.NotNil(t, v.Stats.NextRun)
	assert.Equal(t, "User Engagement Analytics", v.Stats.NextRun.Model.Name)
	assert.Equal(t, time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC), v.Stats.NextRun.At)
}

func TestBuildView_NextRunIgnoresDisabledAndInvalid(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	models := []*core.Model{
		{ID: "a", Name: "disabled", Enabled: false, ScheduleInterval: "* * * * *"},
		{ID: "b", Name: "broken", Enabled: true, ScheduleInterval: "not cron"},
	}

	v := BuildView(models, now)

	assert.Nil(t, v.Stats.NextRun)
	assert.Equal(t, 1, v.Stats.EnabledModels)
}

func TestBuildView_RecentActivity(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var models []*core.Model
	for i := 0; i < 7; i++ {
		models = append(models, &core.Model{
			ID:        string(rune('a' + i)),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	v := BuildView(models, base)

	require.Len(t, v.Recent, RecentLimit)
	assert.Equal(t, "g", v.Recent[0].ID, "most recently updated first")
	assert.Equal(t, "c", v.Recent[RecentLimit-1].ID)
	assert.Equal(t, "a", models[0].ID, "input order untouched")
}

func TestBuildView_Empty(t *testing.T) {
	v := BuildView(nil, time.Now())

	assert.Zero(t, v.Stats.TotalModels)
	assert.Nil(t, v.Stats.NextRun)
	assert.Empty(t, v.Recent)
}
