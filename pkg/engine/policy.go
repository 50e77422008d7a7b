package engine

import (
	"context"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Validator checks form state against a schema. A stage index of
// ValidateAll validates the whole document; that is what the engine asks
// for at final submit. The returned map is keyed by field name; an empty
// map means valid. Validation outcomes are data, never Go errors.
type Validator interface {
	ValidateStage(ctx context.Context, s *schema.Schema, values map[string]any, stage int) map[string][]string
}

// ValidateAll is the stage index requesting whole-schema validation.
const ValidateAll = -1

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(ctx context.Context, s *schema.Schema, values map[string]any, stage int) map[string][]string

// ValidateStage delegates to the underlying function.
func (fn ValidatorFunc) ValidateStage(ctx context.Context, s *schema.Schema, values map[string]any, stage int) map[string][]string {
	return fn(ctx, s, values, stage)
}

// Draft is the persisted in-progress payload: the serializable form state
// plus a timestamp. The engine never inspects the storage medium.
type Draft struct {
	SchemaID string         `json:"schemaId"`
	Values   map[string]any `json:"values"`
	SavedAt  time.Time      `json:"savedAt"`
}

// DraftStore persists in-progress state. The engine saves after every
// mutation, attempts a restore when a schema loads, and clears on reset and
// successful submission.
type DraftStore interface {
	Save(ctx context.Context, d Draft) error
	Load(ctx context.Context) (Draft, bool, error)
	Clear(ctx context.Context) error
}

// Submitter receives the flattened {name: value} payload of currently
// visible, non-plain-text fields. A nil return means success; a non-nil
// error's message is surfaced to the user as a dismissable status.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]any) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, payload map[string]any) error

// Submit delegates to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, payload map[string]any) error {
	return fn(ctx, payload)
}

// Policy bundles the three injected behaviours the engine calls but does not
// implement. Any member left nil falls back to a no-op: accept-all
// validation, discarded drafts, and a submitter that succeeds silently.
type Policy struct {
	Validator Validator
	Drafts    DraftStore
	Submitter Submitter
}

type acceptAllValidator struct{}

func (acceptAllValidator) ValidateStage(context.Context, *schema.Schema, map[string]any, int) map[string][]string {
	return nil
}

type discardDrafts struct{}

func (discardDrafts) Save(context.Context, Draft) error        { return nil }
func (discardDrafts) Load(context.Context) (Draft, bool, error) { return Draft{}, false, nil }
func (discardDrafts) Clear(context.Context) error               { return nil }

type noopSubmitter struct{}

func (noopSubmitter) Submit(context.Context, map[string]any) error { return nil }

func (p Policy) withDefaults() Policy {
	if p.Validator == nil {
		p.Validator = acceptAllValidator{}
	}
	if p.Drafts == nil {
		p.Drafts = discardDrafts{}
	}
	if p.Submitter == nil {
		p.Submitter = noopSubmitter{}
	}
	return p
}
