// Package formflow runs declarative multi-stage forms: a schema describes
// stages, fields, and conditional visibility; the engine owns form state,
// navigation, validation dispatch, and focus continuity; surfaces render
// stages in the terminal or as HTML.
//
// The subpackages carry the full API. This package re-exports the two most
// common entry points so simple callers need a single import.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/surfaces/html"
	"github.com/goliatone/go-formflow/pkg/surfaces/term"
)

// RenderHTML renders one stage of the schema with empty form state and
// returns the full HTML document. It is the simplest entry point for callers
// that just want markup.
func RenderHTML(ctx context.Context, s *schema.Schema, stage int, options ...html.Option) ([]byte, error) {
	renderer, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	snapshot, err := html.NewSnapshot(renderer)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(snapshot, engine.Policy{})
	if err != nil {
		return nil, err
	}
	if err := eng.LoadSchema(ctx, s); err != nil {
		return nil, err
	}
	if err := eng.RenderStage(ctx, stage); err != nil {
		return nil, err
	}
	return snapshot.Render(ctx)
}

// RunTerminal walks the schema interactively in the terminal and blocks until
// the form is submitted or the user quits.
func RunTerminal(ctx context.Context, s *schema.Schema, policy engine.Policy, options ...engine.Option) error {
	surface := term.NewSurface()
	eng, err := engine.New(surface, policy, options...)
	if err != nil {
		return err
	}
	if err := eng.LoadSchema(ctx, s); err != nil {
		return err
	}
	session, err := term.NewSession(eng, surface)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}
