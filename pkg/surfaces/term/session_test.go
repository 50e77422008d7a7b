package term

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// step is one scripted prompt exchange: the session must ask for the given
// prompt kind, and the driver answers with the canned value.
type step struct {
	kind   string // "input", "confirm", "select", "textarea"
	answer any
	pick   string // for selects, the option label to choose
}

type scriptedDriver struct {
	t     *testing.T
	steps []step
	pos   int

	selectConfigs []SelectConfig
}

func (d *scriptedDriver) next(kind string) step {
	d.t.Helper()
	if d.pos >= len(d.steps) {
		d.t.Fatalf("unexpected %s prompt after the script ended", kind)
	}
	s := d.steps[d.pos]
	d.pos++
	if s.kind != kind {
		d.t.Fatalf("step %d: got a %s prompt, script expects %s", d.pos, kind, s.kind)
	}
	return s
}

func (d *scriptedDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	s := d.next("input")
	if err, ok := s.answer.(error); ok {
		return "", err
	}
	return s.answer.(string), nil
}

func (d *scriptedDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	s := d.next("confirm")
	if err, ok := s.answer.(error); ok {
		return false, err
	}
	return s.answer.(bool), nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s := d.next("select")
	d.selectConfigs = append(d.selectConfigs, cfg)
	if err, ok := s.answer.(error); ok {
		return 0, err
	}
	for i, option := range cfg.Options {
		if option == s.pick {
			return i, nil
		}
	}
	d.t.Fatalf("option %q not offered, menu was %v", s.pick, cfg.Options)
	return -1, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	s := d.next("textarea")
	return s.answer.(string), nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func (d *scriptedDriver) done() bool { return d.pos == len(d.steps) }

func sessionSchema() *schema.Schema {
	return &schema.Schema{
		ID:    "signup",
		Title: "Sign up",
		Stages: []schema.Stage{
			{
				ID:    "contact",
				Label: "Contact",
				Fields: []schema.Field{
					{Type: schema.FieldTypePlainText, Text: "Welcome aboard."},
					{Name: "name", Type: schema.FieldTypeText, Label: "Name"},
					{Name: "subscribe", Type: schema.FieldTypeCheckbox, Label: "Subscribe"},
				},
			},
			{ID: "review", Label: "Review", Type: schema.StageTypeSummary},
		},
	}
}

func newSession(t *testing.T, s *schema.Schema, policy engine.Policy, driver *scriptedDriver) (*Session, *Surface, *bytes.Buffer) {
	t.Helper()
	surface := NewSurface()
	surface.markdown = nil // keep output assertions free of ANSI styling

	eng, err := engine.New(surface, policy)
	require.NoError(t, err)
	require.NoError(t, eng.LoadSchema(context.Background(), s))

	var out bytes.Buffer
	session, err := NewSession(eng, surface, WithDriver(driver), WithOutput(&out))
	require.NoError(t, err)
	return session, surface, &out
}

func TestSessionFillAndSubmit(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{t: t, steps: []step{
		{kind: "select", pick: "Edit Name"},
		{kind: "input", answer: "Ada"},
		{kind: "select", pick: "Edit Subscribe"},
		{kind: "confirm", answer: true},
		{kind: "select", pick: "Next stage"},
		{kind: "select", pick: "Submit"},
	}}

	var payload map[string]any
	policy := engine.Policy{
		Submitter: engine.SubmitterFunc(func(_ context.Context, p map[string]any) error {
			payload = p
			return nil
		}),
	}
	session, _, out := newSession(t, sessionSchema(), policy, driver)

	require.NoError(t, session.Run(context.Background()))
	assert.True(t, driver.done(), "script not fully consumed")

	require.NotNil(t, payload)
	assert.Equal(t, map[string]any{"name": "Ada", "subscribe": true}, payload)

	text := out.String()
	assert.Contains(t, text, "== Contact, stage 1 of 2 ==")
	assert.Contains(t, text, "Welcome aboard.")
	assert.Contains(t, text, "Name: Ada")
	assert.Contains(t, text, "Subscribe: yes")
	assert.Contains(t, text, "Name: Ada\n") // summary group echoes the value
	assert.Contains(t, text, "(info) Submitted.")
}

func TestSessionQuitLeavesStateIntact(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{t: t, steps: []step{
		{kind: "select", pick: "Edit Name"},
		{kind: "input", answer: "Ada"},
		{kind: "select", pick: "Quit"},
	}}
	session, surface, _ := newSession(t, sessionSchema(), engine.Policy{}, driver)

	require.NoError(t, session.Run(context.Background()))
	view := surface.CurrentView()
	require.NotNil(t, view)
	assert.False(t, view.Submitted)
}

func TestSessionAbortPropagates(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{t: t, steps: []step{
		{kind: "select", answer: ErrAborted},
	}}
	session, _, _ := newSession(t, sessionSchema(), engine.Policy{}, driver)

	require.ErrorIs(t, session.Run(context.Background()), ErrAborted)
}

func TestSessionMenuResumesAtEditedControl(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{t: t, steps: []step{
		{kind: "select", pick: "Edit Subscribe"},
		{kind: "confirm", answer: true},
		{kind: "select", pick: "Quit"},
	}}
	session, _, _ := newSession(t, sessionSchema(), engine.Policy{}, driver)

	require.NoError(t, session.Run(context.Background()))
	require.Len(t, driver.selectConfigs, 2)
	assert.Equal(t, 0, driver.selectConfigs[0].DefaultIndex)
	// The post-edit menu resumes at the control that was just edited.
	assert.Equal(t, 1, driver.selectConfigs[1].DefaultIndex)
}

func TestSessionJumpMenu(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{t: t, steps: []step{
		{kind: "select", pick: "Next stage"},
		{kind: "select", pick: "Previous stage"},
		{kind: "select", pick: "Go to stage..."},
		{kind: "select", pick: "2. Review"},
		{kind: "select", pick: "Quit"},
	}}
	session, surface, _ := newSession(t, sessionSchema(), engine.Policy{}, driver)

	require.NoError(t, session.Run(context.Background()))
	view := surface.CurrentView()
	require.NotNil(t, view)
	assert.Equal(t, "review", view.StageID)
	assert.True(t, view.IsSummary)
}

func TestSessionValidationErrorsPrinted(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{t: t, steps: []step{
		{kind: "select", pick: "Next stage"},
		{kind: "select", pick: "Quit"},
	}}
	policy := engine.Policy{
		Validator: engine.ValidatorFunc(func(_ context.Context, _ *schema.Schema, values map[string]any, stage int) map[string][]string {
			if stage != 0 {
				return nil
			}
			if name, _ := values["name"].(string); name == "" {
				return map[string][]string{"name": {"Name is required."}}
			}
			return nil
		}),
	}
	session, surface, out := newSession(t, sessionSchema(), policy, driver)

	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, "contact", surface.CurrentView().StageID)
	assert.Contains(t, out.String(), "! Name is required.")
}

func TestSessionSchemaErrorShortCircuits(t *testing.T) {
	t.Parallel()

	surface := NewSurface()
	eng, err := engine.New(surface, engine.Policy{})
	require.NoError(t, err)
	require.Error(t, eng.LoadSchema(context.Background(), &schema.Schema{ID: "broken"}))

	var out bytes.Buffer
	session, err := NewSession(eng, surface, WithDriver(&scriptedDriver{t: t}), WithOutput(&out))
	require.NoError(t, err)

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, out.String(), "schema error:")
}

func TestNewSessionValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSession(nil, NewSurface())
	require.Error(t, err)
	_, err = NewSession(&engine.Engine{}, nil)
	require.Error(t, err)
}
