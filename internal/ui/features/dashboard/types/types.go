// Package types holds the dashboard view model.
package types //nolint:revive // imported with alias dashtypes

import (
	"sort"
	"time"

	"github.com/leapstack-labs/metastore/internal/schedule"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// RecentLimit caps the recent activity list.
const RecentLimit = 5

// Stats holds the dashboard counters.
type Stats struct {
	TotalModels   int
	EnabledModels int
	TotalSteps    int
	// NextRun is nil when no enabled model has a valid schedule.
	NextRun *NextRun
}

// NextRun is the earliest upcoming scheduled run.
type NextRun struct {
	Model *core.Model
	At    time.Time
}

// View holds everything the dashboard renders.
type View struct {
	Stats  Stats
	Recent []*core.Model
}

// BuildView computes the dashboard from the model list as of now.
func BuildView(models []*core.Model, now time.Time) View {
	var v View
	v.Stats.TotalModels = len(models)

	for _, m := range models {
		v.Stats.TotalSteps += len(m.Steps)
		if !m.Enabled {
			continue
		}
		v.Stats.EnabledModels++

		at, err := schedule.Next(m.ScheduleInterval, now)
		if err != nil {
			continue
		}
		if v.Stats.NextRun == nil || at.Before(v.Stats.NextRun.At) {
			v.Stats.NextRun = &NextRun{Model: m, At: at}
		}
	}

	recent := make([]*core.Model, len(models))
	copy(recent, models)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	v.Recent = recent

	return v
}
