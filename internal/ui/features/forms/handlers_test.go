package forms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/ui/features"
	"github.com/leapstack-labs/metastore/pkg/core"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Store, fixture.SessionStore, fixture.Logger, true), fixture
}

func post(h *Handlers, action string, query url.Values, values url.Values) *httptest.ResponseRecorder {
	target := "/forms/" + action
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := features.RequestWithPathParam(features.PostForm(target, values), "action", action)
	rec := httptest.NewRecorder()
	h.Apply(rec, req)
	return rec
}

func createDraft() *form.ModelDraft {
	d := form.NewModelDraft()
	d.Input.Name = "Orders"
	return d
}

func TestApply_AddTag(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.NewTagKey, d.NewTagValue = "team", "ops"

	rec := post(h, "add-tag", nil, form.EncodeModelDraft(d))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Create Model - MetaStore</title>")
	assert.Contains(t, body, "team: ops")
	assert.Contains(t, body, `name="tag_key" value="team"`)
	assert.Contains(t, body, `name="new_tag_key" value=""`, "pending inputs are cleared")
	assert.Contains(t, body, `value="Orders"`, "rest of the draft is kept")
}

func TestApply_AddTagMissingValueKeepsInputs(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.NewTagKey = "team"

	rec := post(h, "add-tag", nil, form.EncodeModelDraft(d))

	body := rec.Body.String()
	assert.NotContains(t, body, `name="tag_key"`)
	assert.Contains(t, body, `name="new_tag_key" value="team"`)
}

func TestApply_RemoveTag(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.Input.Tags = core.MappingOf("env", "prod", "team", "ops")

	rec := post(h, "remove-tag", url.Values{"key": {"env"}}, form.EncodeModelDraft(d))

	body := rec.Body.String()
	assert.NotContains(t, body, "env: prod")
	assert.Contains(t, body, "team: ops")
}

func TestApply_StepActions(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	rec := post(h, "add-step", nil, form.EncodeModelDraft(d))
	body := rec.Body.String()
	assert.Contains(t, body, `name="steps.0.name" value="New Step"`)
	assert.NotContains(t, body, "No steps added yet")

	d.Input.Steps = form.AddStep(form.AddStep(nil, ""), "")
	rec = post(h, "remove-step", url.Values{"index": {"0"}}, form.EncodeModelDraft(d))
	body = rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, `class="step-editor"`))
	assert.Contains(t, body, `name="steps.0.step_order" value="1"`, "remaining step keeps its order")
}

func TestApply_SchemaFieldActions(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.Input.Steps = form.AddStep(nil, "")

	rec := post(h, "add-field", url.Values{"step": {"0"}}, form.EncodeModelDraft(d))
	body := rec.Body.String()
	assert.Contains(t, body, `name="steps.0.schema_orig" value="new_field"`)

	d.Input.Steps[0].Schema = core.MappingOf("id", "string", "email", "string")
	rec = post(h, "remove-field", url.Values{"step": {"0"}, "field": {"id"}}, form.EncodeModelDraft(d))
	body = rec.Body.String()
	assert.NotContains(t, body, `name="steps.0.schema_orig" value="id"`)
	assert.Contains(t, body, `name="steps.0.schema_orig" value="email"`)
}

func TestApply_RemoveRenamedField(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.Input.Steps = form.AddStep(nil, "")
	d.Input.Steps[0].Schema = core.MappingOf("id", "string", "email", "string")
	values := form.EncodeModelDraft(d)
	values["steps.0.schema_name"][0] = "user_id"

	rec := post(h, "remove-field", url.Values{"step": {"0"}, "field": {"id"}}, values)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, `value="user_id"`)
	assert.NotContains(t, body, `name="steps.0.schema_orig" value="id"`)
	assert.Contains(t, body, `name="steps.0.schema_orig" value="email"`)
}

func TestApply_SwapFieldNames(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.Input.Steps = form.AddStep(nil, "")
	d.Input.Steps[0].Schema = core.MappingOf("a", "integer", "b", "string")
	values := form.EncodeModelDraft(d)
	values["steps.0.schema_name"] = []string{"b", "a"}

	rec := post(h, "refresh", nil, values)

	body := rec.Body.String()
	assert.Contains(t, body, `name="steps.0.schema_orig" value="a"`)
	assert.Contains(t, body, `name="steps.0.schema_orig" value="b"`)
}

func TestApply_RefreshAppliesRenames(t *testing.T) {
	h, _ := setupTestHandlers(t)

	d := createDraft()
	d.Input.Steps = form.AddStep(nil, "")
	d.Input.Steps[0].Schema = core.MappingOf("id", "string", "email", "string")
	values := form.EncodeModelDraft(d)
	values["steps.0.schema_name"][0] = "user_id"

	rec := post(h, "refresh", nil, values)

	body := rec.Body.String()
	emailAt := strings.Index(body, `name="steps.0.schema_orig" value="email"`)
	renamedAt := strings.Index(body, `name="steps.0.schema_orig" value="user_id"`)
	require.NotEqual(t, -1, emailAt)
	require.NotEqual(t, -1, renamedAt)
	assert.Greater(t, renamedAt, emailAt, "renamed field moves to the end")
}

func TestApply_StepMode(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	m, err := fixture.Store.GetModel(context.Background(), "1")
	require.NoError(t, err)

	rec := post(h, "add-field", nil, form.EncodeStepDraft(form.EditStepDraft(m.Steps[1])))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Edit Step - MetaStore</title>")
	assert.Contains(t, body, `name="step.schema_orig" value="new_field"`)
	assert.Contains(t, body, `action="/models/1/steps/1"`)

	// The store is untouched.
	got, err := fixture.Store.GetModel(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, got.Steps[1].Schema.Has("new_field"))
}

func TestApply_Errors(t *testing.T) {
	h, _ := setupTestHandlers(t)

	tests := []struct {
		name       string
		action     string
		query      url.Values
		values     url.Values
		wantStatus int
	}{
		{"unknown action", "explode", nil, form.EncodeModelDraft(createDraft()), http.StatusBadRequest},
		{"step action in step mode", "add-step", nil, form.EncodeStepDraft(&form.StepDraft{ModelID: "1", Step: form.NewStep("1", 0)}), http.StatusBadRequest},
		{"bad index", "remove-step", url.Values{"index": {"x"}}, form.EncodeModelDraft(createDraft()), http.StatusBadRequest},
		{"missing mode", "add-tag", nil, url.Values{"name": {"Orders"}}, http.StatusBadRequest},
		{"unknown model", "add-field", nil, form.EncodeStepDraft(&form.StepDraft{ModelID: "404", Step: form.NewStep("404", 0)}), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, tt.action, tt.query, tt.values)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
