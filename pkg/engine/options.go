package engine

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Option customises engine construction.
type Option func(*Engine)

// WithDebounce overrides the delay applied to debounced free-text renders.
func WithDebounce(delay time.Duration) Option {
	return func(e *Engine) {
		if delay > 0 {
			e.delay = delay
		}
	}
}

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithVisibility swaps the visibility evaluator used for showIf conditions.
func WithVisibility(eval visibility.Evaluator) Option {
	return func(e *Engine) {
		if eval != nil {
			e.eval = eval
		}
	}
}

// WithFocusFirstOnStageChange makes every stage change move focus to the
// first focusable control of the new stage.
func WithFocusFirstOnStageChange(enabled bool) Option {
	return func(e *Engine) {
		e.focusFirst = enabled
	}
}

// WithDraftRestore controls whether LoadSchema seeds state from a stored
// draft whose schema ID matches. Enabled by default.
func WithDraftRestore(enabled bool) Option {
	return func(e *Engine) {
		e.restoreDrafts = enabled
	}
}

// WithBooleanTokens overrides the localized yes/no tokens the summary stage
// uses for checkbox values.
func WithBooleanTokens(yes, no string) Option {
	return func(e *Engine) {
		if yes != "" {
			e.yesToken = yes
		}
		if no != "" {
			e.noToken = no
		}
	}
}

// WithEmptyPlaceholder overrides the placeholder token the summary stage
// shows for empty values. The default is an em-dash.
func WithEmptyPlaceholder(token string) Option {
	return func(e *Engine) {
		if token != "" {
			e.emptyToken = token
		}
	}
}

// WithRequiredMessage overrides the generic fallback message bound to a
// field when validation reports an error without supplying one.
func WithRequiredMessage(message string) Option {
	return func(e *Engine) {
		if message != "" {
			e.requiredMessage = message
		}
	}
}
