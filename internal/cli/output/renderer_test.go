package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/testutil"
)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty means auto", "", false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)

	r.Header(1, "Models (2 total)")
	r.KeyValue("Schedule", "Daily at 00:00")
	r.Table([]string{"ID", "Name"}, [][]string{{"1", "Orders"}, {"2", "Revenue"}})

	got := out.String()
	assert.Contains(t, got, "# Models (2 total)\n")
	assert.Contains(t, got, "- **Schedule:** Daily at 00:00")
	assert.Contains(t, got, "| ID | Name |")
	assert.Contains(t, got, "| 2 | Revenue |")
	testutil.AssertNoANSI(t, got)
}

func TestRenderer_TextTable(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText, false)

	r.Header(1, "Models")
	r.Table([]string{"ID", "Name"}, [][]string{{"1", "Orders"}})

	got := out.String()
	assert.Contains(t, got, "Models")
	assert.Contains(t, got, "┌")
	assert.Contains(t, got, "Orders")
	testutil.AssertNoANSI(t, got)
}

func TestRenderer_MessagesGoToTheRightStream(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)

	r.Success("saved")
	r.Muted("nothing else")
	r.Warning("careful")
	r.Error("broken")

	assert.Equal(t, "✓ saved\nnothing else\n", out.String())
	assert.Equal(t, "! careful\n✗ broken\n", errOut.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false)

	require.NoError(t, r.JSON(map[string]int{"models": 3}))
	assert.Equal(t, "{\n  \"models\": 3\n}\n", out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Steps", FormatHeader(2, "Steps"))
	assert.Equal(t, "# Steps", FormatHeader(0, "Steps"))
	assert.Equal(t, "- **Type:** REDSHIFT", FormatKeyValue("Type", "REDSHIFT"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}
