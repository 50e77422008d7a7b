package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/engine/enginetest"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func addressSchema() *schema.Schema {
	return &schema.Schema{
		ID: "address",
		Stages: []schema.Stage{
			{
				ID: "main",
				Fields: []schema.Field{
					{Name: "country", Type: schema.FieldTypeText, Label: "Country"},
					{Name: "state", Type: schema.FieldTypeText, Label: "State",
						ShowIf: &schema.Condition{Field: "country", Equals: "us"}},
					{Name: "notes", Type: schema.FieldTypeTextarea, Label: "Notes"},
				},
			},
		},
	}
}

const testDelay = 20 * time.Millisecond

// settle waits long enough for any scheduled debounce render to have fired.
func settle() {
	time.Sleep(testDelay * 5)
}

func TestControllerInputRendersImmediately(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))
	_ = eng

	before := surface.Mounts()
	control, ok := surface.ControlByName("country")
	require.True(t, ok)
	require.NotNil(t, control.OnInput)
	assert.True(t, control.Controller, "country is referenced by state's condition")

	control.OnInput(context.Background(), "us")
	assert.Equal(t, before+1, surface.Mounts(), "controller keystrokes render synchronously")

	_, ok = surface.ControlByName("state")
	assert.True(t, ok, "dependent field appears as soon as the condition matches")
}

func TestControllerRevealHidesAgainPerKeystroke(t *testing.T) {
	t.Parallel()

	_, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	typeInput(t, surface, "country", "us")
	_, visible := surface.ControlByName("state")
	require.True(t, visible)

	typeInput(t, surface, "country", "usa")
	_, visible = surface.ControlByName("state")
	assert.False(t, visible, "strict equality: \"usa\" does not match \"us\"")
}

func TestNonControllerInputDebounces(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	before := surface.Mounts()
	control, ok := surface.ControlByName("notes")
	require.True(t, ok)
	require.NotNil(t, control.OnInput)
	require.False(t, control.Controller)

	ctx := context.Background()
	control.OnInput(ctx, "d")
	control.OnInput(ctx, "dr")
	control.OnInput(ctx, "dra")
	assert.Equal(t, before, surface.Mounts(), "no render before the delay elapses")
	assert.Equal(t, "dra", eng.Values()["notes"], "state updates on every keystroke")

	settle()
	assert.Equal(t, before+1, surface.Mounts(), "a burst coalesces into one render")
}

func TestDebouncePerFieldIndependence(t *testing.T) {
	t.Parallel()

	_, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	before := surface.Mounts()
	notes, _ := surface.ControlByName("notes")
	country, _ := surface.ControlByName("country")

	ctx := context.Background()
	notes.OnInput(ctx, "hello")
	country.OnInput(ctx, "u") // immediate render, does not cancel the notes timer

	require.Equal(t, before+1, surface.Mounts())
	settle()
	assert.Equal(t, before+2, surface.Mounts(), "the notes timer still fires")
}

func TestCommitCancelsPendingDebounce(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	control, ok := surface.ControlByName("notes")
	require.True(t, ok)

	ctx := context.Background()
	control.OnInput(ctx, "draft tex")
	before := surface.Mounts()
	control.OnChange(ctx, "draft text")
	require.Equal(t, before+1, surface.Mounts(), "commit renders immediately")

	settle()
	assert.Equal(t, before+1, surface.Mounts(), "the pending debounce was cancelled")
	assert.Equal(t, "draft text", eng.Values()["notes"])
}

func TestStaleGenerationHandlersAreNoOps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	stale, ok := surface.ControlByName("notes")
	require.True(t, ok)

	// Any render retires previously handed-out closures.
	require.NoError(t, eng.RenderStage(ctx, 0))
	before := surface.Mounts()

	stale.OnInput(ctx, "late keystroke")
	stale.OnChange(ctx, "late commit")
	settle()

	assert.Equal(t, before, surface.Mounts(), "stale handlers must not render")
	assert.NotContains(t, eng.Values(), "notes", "stale handlers must not mutate state")
}

func TestHiddenFieldValuePruned(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	setValue(t, surface, "country", "us")
	setValue(t, surface, "state", "CA")
	require.Equal(t, "CA", eng.Values()["state"])

	setValue(t, surface, "country", "fr")
	values := eng.Values()
	assert.NotContains(t, values, "state", "hidden field values are pruned")
	assert.Equal(t, "fr", values["country"])

	// Re-showing starts empty rather than with the stale value.
	setValue(t, surface, "country", "us")
	control, ok := surface.ControlByName("state")
	require.True(t, ok)
	assert.Equal(t, "", control.Value)
}

func TestPruneCascadesThroughChains(t *testing.T) {
	t.Parallel()

	chain := &schema.Schema{
		ID: "chain",
		Stages: []schema.Stage{
			{
				ID: "main",
				Fields: []schema.Field{
					{Name: "a", Type: schema.FieldTypeCheckbox},
					{Name: "b", Type: schema.FieldTypeCheckbox, ShowIf: &schema.Condition{Field: "a", Equals: true}},
					{Name: "c", Type: schema.FieldTypeText, ShowIf: &schema.Condition{Field: "b", Equals: true}},
				},
			},
		},
	}

	eng, surface := newEngine(t, chain, engine.Policy{})

	setValue(t, surface, "a", true)
	setValue(t, surface, "b", true)
	setValue(t, surface, "c", "deep")
	require.Equal(t, "deep", eng.Values()["c"])

	setValue(t, surface, "a", false)
	values := eng.Values()
	assert.NotContains(t, values, "b", "direct dependent pruned")
	assert.NotContains(t, values, "c", "transitive dependent pruned in the same render")
}

func TestCheckboxChangeCoercion(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, wizardSchema(), engine.Policy{})

	control, ok := surface.ControlByName("newsletter")
	require.True(t, ok)
	control.OnChange(context.Background(), "true")
	assert.Equal(t, true, eng.Values()["newsletter"], "string commits coerce for checkboxes")
}

func TestInputIgnoredWhileBusy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	surface := enginetest.NewSurface()

	var duringSubmit engine.Control
	policy := engine.Policy{
		Submitter: engine.SubmitterFunc(func(context.Context, map[string]any) error {
			// The busy view is mounted by now; grab a control from it.
			duringSubmit, _ = surface.ControlByName("email")
			return nil
		}),
	}
	eng, err := engine.New(surface, policy)
	require.NoError(t, err)

	single := &schema.Schema{
		ID: "single",
		Stages: []schema.Stage{
			{ID: "only", Fields: []schema.Field{{Name: "email", Type: schema.FieldTypeEmail}}},
		},
	}
	require.NoError(t, eng.LoadSchema(ctx, single))
	require.NoError(t, eng.Submit(ctx))

	// The control handed out during the busy render is already stale once the
	// submission settles, so replaying it changes nothing.
	if duringSubmit.OnChange != nil {
		duringSubmit.OnChange(ctx, "late@example.com")
	}
	assert.NotContains(t, eng.Values(), "email")
}

// typeInput resolves the named control from the latest view and fires one
// input event.
func typeInput(t *testing.T, surface *enginetest.Surface, name, value string) {
	t.Helper()
	control, ok := surface.ControlByName(name)
	require.True(t, ok, "control %q not on current stage", name)
	require.NotNil(t, control.OnInput)
	control.OnInput(context.Background(), value)
}
