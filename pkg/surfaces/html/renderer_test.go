package html

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func stageView() *engine.StageView {
	return &engine.StageView{
		SchemaID: "signup",
		Title:    "Sign up",
		Stage:    0,
		StageID:  "contact",
		Label:    "Contact",
		Tabs: []engine.StageTab{
			{Index: 0, Label: "Contact", Current: true, Reached: true},
			{Index: 1, Label: "Review", Reached: true, IsSummary: true},
		},
		Controls: []engine.Control{
			{Kind: schema.FieldTypePlainText, Title: "Welcome", Text: "<p>Hello <script>alert(1)</script></p>"},
			{
				ID: "ff-email", Name: "email", Kind: schema.FieldTypeEmail,
				Label: "Email", Required: true, Value: "ada@example.com",
				HelperText: "Work address preferred.",
			},
			{
				ID: "ff-newsletter", Name: "newsletter", Kind: schema.FieldTypeCheckbox,
				Label: "Newsletter", Value: true, Controller: true,
			},
			{
				ID: "ff-frequency", Name: "frequency", Kind: schema.FieldTypeSelect,
				Label: "Frequency",
				Options: []engine.OptionView{
					{ID: "ff-frequency-daily", Value: "daily", Label: "Daily"},
					{ID: "ff-frequency-weekly", Value: "weekly", Label: "Weekly", Selected: true},
				},
			},
		},
		FocusOrder: []string{"ff-email", "ff-newsletter", "ff-frequency"},
		CanNext:    true,
		Generation: 7,
	}
}

func render(t *testing.T, view *engine.StageView, focusID string) string {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	page, err := r.Render(context.Background(), view, focusID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(page)
}

func assertContains(t *testing.T, page string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderStagePage(t *testing.T) {
	t.Parallel()

	page := render(t, stageView(), "")

	assertContains(t, page,
		`<form method="post" class="formflow-form" data-schema="signup" data-stage="0" data-generation="7">`,
		`<input type="email" id="ff-email" name="email" value="ada@example.com"`,
		` required`,
		`aria-describedby="ff-email-helper"`,
		`<input type="checkbox" id="ff-newsletter" name="newsletter" checked`,
		`data-controller="true"`,
		`<option value="weekly" selected>Weekly</option>`,
		`<button type="submit" name="_nav" value="next">Next</button>`,
		`<button type="submit" name="_nav" value="reset">Reset</button>`,
	)
	if strings.Contains(page, `name="_nav" value="prev"`) {
		t.Error("previous button rendered on the first stage")
	}
	if strings.Contains(page, `name="_nav" value="submit"`) {
		t.Error("submit button rendered before it is available")
	}
}

func TestRenderSanitizesAuthoredMarkup(t *testing.T) {
	t.Parallel()

	page := render(t, stageView(), "")
	if strings.Contains(page, "<script>") {
		t.Error("script tag survived sanitization")
	}
	assertContains(t, page, "<p>Hello")
}

func TestRenderAutofocus(t *testing.T) {
	t.Parallel()

	page := render(t, stageView(), "ff-email")
	assertContains(t, page, `aria-describedby="ff-email-helper" autofocus`)
	if strings.Count(page, " autofocus") != 1 {
		t.Errorf("expected exactly one autofocus attribute:\n%s", page)
	}
}

func TestRenderIndicatorJumpTargets(t *testing.T) {
	t.Parallel()

	page := render(t, stageView(), "")
	// Reached non-current stages are jump buttons; the current stage is not.
	assertContains(t, page, `<button type="submit" name="_jump" value="1">Review</button>`)
	assertContains(t, page, `<span aria-current="step">Contact</span>`)
}

func TestRenderStatusAndErrors(t *testing.T) {
	t.Parallel()

	view := stageView()
	view.Status = "Submission failed: boom"
	view.StatusIsError = true
	view.Controls[1].Errors = []string{"Must be a valid email address."}

	page := render(t, view, "")
	assertContains(t, page,
		`<div class="formflow-status" role="alert">Submission failed: boom<button type="submit" name="_dismiss" value="1"`,
		`aria-invalid="true" aria-describedby="ff-email-error"`,
		`<p class="formflow-error" id="ff-email-error" role="alert">Must be a valid email address.</p>`,
	)
}

func TestRenderBusyDisablesControls(t *testing.T) {
	t.Parallel()

	view := stageView()
	view.Busy = true
	view.CanSubmit = true

	page := render(t, view, "")
	assertContains(t, page,
		" data-busy>",
		`name="email" value="ada@example.com" required disabled`,
		`name="_nav" value="submit" disabled aria-busy="true"`,
	)
}

func TestRenderSummaryStage(t *testing.T) {
	t.Parallel()

	view := &engine.StageView{
		SchemaID:  "signup",
		Stage:     1,
		StageID:   "review",
		Label:     "Review",
		IsSummary: true,
		Tabs: []engine.StageTab{
			{Index: 0, Label: "Contact", Reached: true},
			{Index: 1, Label: "Review", Current: true, Reached: true, IsSummary: true},
		},
		Summary: []engine.SummaryGroup{
			{Stage: 0, Label: "Contact", Items: []engine.SummaryItem{
				{Name: "email", Label: "Email", Value: "ada@example.com"},
				{Name: "newsletter", Label: "Newsletter", Value: "Yes"},
			}},
		},
		CanPrev:   true,
		CanSubmit: true,
	}

	page := render(t, view, "")
	assertContains(t, page,
		`<section class="formflow-summary" aria-label="Review">`,
		`<dt>Email</dt><dd data-field="email">ada@example.com</dd>`,
		`<dd data-field="newsletter">Yes</dd>`,
		`name="_nav" value="submit"`,
	)
}

func TestRenderCustomAttributes(t *testing.T) {
	t.Parallel()

	view := stageView()
	view.Controls[1].Attributes = []engine.AttrView{
		{Name: "maxlength", Value: "64"},
		{Name: "readonly", Presence: true},
	}

	page := render(t, view, "")
	assertContains(t, page, ` maxlength="64" readonly`)
}

func TestRenderNilView(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), nil, ""); err == nil {
		t.Fatal("expected an error for the nil view")
	}
}

func TestRenderErrorPage(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	page, err := r.RenderError(context.Background(), `schema is invalid: <details>`)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	assertContains(t, string(page),
		`<div class="formflow-schema-error" role="alert">schema is invalid: &lt;details&gt;</div>`,
	)
	if strings.Contains(string(page), "<form") {
		t.Error("error page must not render the form")
	}
}

func TestSnapshotServesEngineRenders(t *testing.T) {
	t.Parallel()

	snapshot, err := NewSnapshot(nil)
	if err != nil {
		t.Fatalf("new snapshot: %v", err)
	}
	eng, err := engine.New(snapshot, engine.Policy{}, engine.WithFocusFirstOnStageChange(true))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	s := &schema.Schema{
		ID: "mini",
		Stages: []schema.Stage{
			{ID: "main", Label: "Main", Fields: []schema.Field{
				{Name: "name", Type: schema.FieldTypeText, Label: "Name"},
			}},
		},
	}
	ctx := context.Background()
	if err := eng.LoadSchema(ctx, s); err != nil {
		t.Fatalf("load schema: %v", err)
	}

	page, err := snapshot.Render(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, string(page),
		`data-schema="mini"`,
		`name="name"`,
		// The first render applies first-control focus, surfaced as autofocus.
		` autofocus`,
	)
	if got := snapshot.Announcement(); !strings.Contains(got, "Main") {
		t.Errorf("announcement %q does not mention the stage", got)
	}

	// The consumed focus target must not leak into the next render.
	page, err = snapshot.Render(ctx)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if strings.Contains(string(page), " autofocus") {
		t.Error("autofocus leaked into a second render")
	}
}
