package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/engine"
)

func focusTarget(name string) engine.FocusTarget {
	return engine.FocusTarget{ID: engine.ControlID(name), Name: name}
}

func TestFocusRestoredAfterDestructiveRender(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{})

	target := focusTarget("country")
	surface.SetFocused(target)
	eng.FocusChanged(&target)

	// The commit re-renders; the fake surface destroys focus on mount, so the
	// engine must restore it.
	setValue(t, surface, "country", "us")

	applied := surface.AppliedFocus()
	require.NotEmpty(t, applied)
	assert.Equal(t, target.ID, applied[len(applied)-1].ID)
}

func TestFocusNotStolenWhenOutsideForm(t *testing.T) {
	t.Parallel()

	_, surface := newEngine(t, addressSchema(), engine.Policy{})

	// Focus is outside the form's scope when the render starts.
	surface.ClearFocus()
	setValue(t, surface, "country", "us")

	assert.Empty(t, surface.AppliedFocus(), "restoration must not steal focus")
}

func TestFocusSurvivingMountSkipsRestoration(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{})
	surface.KeepFocusAcrossMounts()

	target := focusTarget("country")
	surface.SetFocused(target)
	eng.FocusChanged(&target)

	setValue(t, surface, "country", "us")
	assert.Empty(t, surface.AppliedFocus(), "surface kept focus alive; nothing to restore")
}

func TestStaleCaptureFallsBackToLatestTarget(t *testing.T) {
	t.Parallel()

	eng, surface := newEngine(t, addressSchema(), engine.Policy{}, engine.WithDebounce(testDelay))

	first := focusTarget("notes")
	surface.SetFocused(first)
	eng.FocusChanged(&first)

	// Typing captures "notes" for the debounced render...
	typeInput(t, surface, "notes", "hello")

	// ...but focus moves on before the timer fires, making the capture stale.
	second := focusTarget("country")
	surface.SetFocused(second)
	eng.FocusChanged(&second)

	time.Sleep(testDelay * 5)

	applied := surface.AppliedFocus()
	require.NotEmpty(t, applied)
	assert.Equal(t, second.ID, applied[len(applied)-1].ID, "stale capture falls back to the last in-scope target")
}

func TestFocusFirstOnStageChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, surface := newEngine(t, wizardSchema(), engine.Policy{}, engine.WithFocusFirstOnStageChange(true))

	require.NoError(t, eng.Next(ctx))
	applied := surface.AppliedFocus()
	require.NotEmpty(t, applied)
	// frequency is hidden until newsletter is checked, so the first focusable
	// control on the stage is the comment box.
	assert.Equal(t, engine.ControlID("comment"), applied[len(applied)-1].ID)
}

func TestStageChangeDoesNotRestoreOldFocus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, surface := newEngine(t, wizardSchema(), engine.Policy{})

	target := focusTarget("email")
	surface.SetFocused(target)
	eng.FocusChanged(&target)

	require.NoError(t, eng.Next(ctx))
	assert.Empty(t, surface.AppliedFocus(), "navigation renders never restore the previous stage's focus")
}
