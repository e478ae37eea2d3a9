package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/pkg/core"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{}, ""},
		{"known rules", Config{Disabled: []string{"ms01", " MS02 "}, Severity: map[string]string{"ST01": "info"}}, ""},
		{"unknown disabled rule", Config{Disabled: []string{"XX99"}}, `unknown rule "XX99"`},
		{"unknown severity rule", Config{Severity: map[string]string{"XX99": "info"}}, `unknown rule "XX99"`},
		{"unknown severity", Config{Severity: map[string]string{"MS01": "fatal"}}, `unknown severity "fatal"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAnalyzerFromConfig(t *testing.T) {
	m := &core.Model{ID: "x", Name: "x", ModelType: core.ModelTypeRedshift, ScheduleInterval: "often", Tags: core.Mapping{}}

	a, err := NewAnalyzerFromConfig(Config{})
	require.NoError(t, err)
	diags := a.Analyze(m)
	require.Len(t, diags, 1)
	assert.Equal(t, "MS01", diags[0].RuleID)
	assert.Equal(t, SeverityError, diags[0].Severity)

	a, err = NewAnalyzerFromConfig(Config{Severity: map[string]string{"ms01": "info"}})
	require.NoError(t, err)
	diags = a.Analyze(m)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityInfo, diags[0].Severity)

	a, err = NewAnalyzerFromConfig(Config{Disabled: []string{"MS01"}})
	require.NoError(t, err)
	assert.Empty(t, a.Analyze(m))

	_, err = NewAnalyzerFromConfig(Config{Disabled: []string{"nope"}})
	assert.Error(t, err)
}
