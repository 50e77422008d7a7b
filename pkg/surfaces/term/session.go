package term

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Session drives an engine through an interactive terminal loop: it prints
// the mounted stage, offers field edits via prompts, and maps menu choices
// onto engine navigation.
type Session struct {
	engine  *engine.Engine
	surface *Surface
	driver  PromptDriver
	out     io.Writer
}

// SessionOption customises a session.
type SessionOption func(*Session)

// WithDriver swaps the prompt driver; the default talks to the terminal via
// survey.
func WithDriver(driver PromptDriver) SessionOption {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput redirects stage output, which defaults to stdout.
func WithOutput(out io.Writer) SessionOption {
	return func(s *Session) {
		if out != nil {
			s.out = out
		}
	}
}

// NewSession wires a session around an engine and its terminal surface. The
// engine must have been constructed with the same surface.
func NewSession(eng *engine.Engine, surface *Surface, opts ...SessionOption) (*Session, error) {
	if eng == nil || surface == nil {
		return nil, errors.New("term: engine and surface are required")
	}
	s := &Session{
		engine:  eng,
		surface: surface,
		driver:  NewSurveyDriver(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Run loops until the form is submitted, the user quits, or the context is
// cancelled.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if msg := s.surface.SchemaError(); msg != "" {
			fmt.Fprintf(s.out, "schema error: %s\n", msg)
			return nil
		}
		view := s.surface.CurrentView()
		if view == nil {
			return errors.New("term: no stage mounted; load a schema first")
		}

		s.printStage(view)
		if view.Submitted {
			return nil
		}

		action, control, err := s.menu(ctx, view)
		if err != nil {
			return err
		}

		switch action {
		case actionEdit:
			if err := s.editControl(ctx, control); err != nil {
				return err
			}
		case actionNext:
			if err := s.engine.Next(ctx); err != nil {
				return err
			}
		case actionPrev:
			if err := s.engine.Prev(ctx); err != nil {
				return err
			}
		case actionJump:
			if err := s.jump(ctx, view); err != nil {
				return err
			}
		case actionSubmit:
			if err := s.engine.Submit(ctx); err != nil {
				return err
			}
		case actionReset:
			if err := s.engine.Reset(ctx); err != nil {
				return err
			}
		case actionQuit:
			return nil
		}
	}
}

type sessionAction int

const (
	actionEdit sessionAction = iota
	actionNext
	actionPrev
	actionJump
	actionSubmit
	actionReset
	actionQuit
)

func (s *Session) menu(ctx context.Context, view *engine.StageView) (sessionAction, engine.Control, error) {
	var labels []string
	var actions []sessionAction
	var controls []engine.Control

	for _, control := range view.Controls {
		if control.Kind == schema.FieldTypePlainText {
			continue
		}
		labels = append(labels, fmt.Sprintf("Edit %s", control.Label))
		actions = append(actions, actionEdit)
		controls = append(controls, control)
	}
	if view.CanPrev {
		labels, actions, controls = appendAction(labels, actions, controls, "Previous stage", actionPrev)
	}
	if view.CanNext {
		labels, actions, controls = appendAction(labels, actions, controls, "Next stage", actionNext)
	}
	if reachable(view.Tabs) > 1 {
		labels, actions, controls = appendAction(labels, actions, controls, "Go to stage...", actionJump)
	}
	if view.CanSubmit {
		labels, actions, controls = appendAction(labels, actions, controls, "Submit", actionSubmit)
	}
	labels, actions, controls = appendAction(labels, actions, controls, "Reset form", actionReset)
	labels, actions, controls = appendAction(labels, actions, controls, "Quit", actionQuit)

	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "What next?",
		Options:      labels,
		DefaultIndex: s.defaultMenuIndex(view, controls),
		PageSize:     12,
	})
	if err != nil {
		return actionQuit, engine.Control{}, err
	}
	if idx < 0 || idx >= len(actions) {
		return actionQuit, engine.Control{}, nil
	}
	return actions[idx], controls[idx], nil
}

// defaultMenuIndex resumes the menu at the control that held focus before
// the last re-render, preserving editing continuity across mounts.
func (s *Session) defaultMenuIndex(view *engine.StageView, controls []engine.Control) int {
	target, ok := s.surface.FocusedField()
	if !ok {
		return 0
	}
	for i, control := range controls {
		if control.ID == target.ID {
			return i
		}
	}
	return 0
}

func appendAction(labels []string, actions []sessionAction, controls []engine.Control, label string, action sessionAction) ([]string, []sessionAction, []engine.Control) {
	return append(labels, label), append(actions, action), append(controls, engine.Control{})
}

func reachable(tabs []engine.StageTab) int {
	n := 0
	for _, tab := range tabs {
		if tab.Reached {
			n++
		}
	}
	return n
}

func (s *Session) editControl(ctx context.Context, control engine.Control) error {
	target := engine.FocusTarget{ID: control.ID, Name: control.Name}
	s.surface.setFocus(target)
	s.engine.FocusChanged(&target)

	help := control.HelperText
	message := control.Label
	if control.Required {
		message += " *"
	}

	switch {
	case control.Kind == schema.FieldTypeCheckbox:
		checked, _ := control.Value.(bool)
		value, err := s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Help: help})
		if err != nil {
			return err
		}
		control.OnChange(ctx, value)

	case control.Kind == schema.FieldTypeSelect || control.Kind == schema.FieldTypeRadio:
		options := make([]string, len(control.Options))
		defaultIdx := 0
		for i, opt := range control.Options {
			options[i] = opt.Label
			if opt.Selected {
				defaultIdx = i
			}
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: defaultIdx, Help: help})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(control.Options) {
			control.OnChange(ctx, control.Options[idx].Value)
		}

	case control.Kind == schema.FieldTypeTextarea:
		current, _ := control.Value.(string)
		value, err := s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Help: help})
		if err != nil {
			return err
		}
		control.OnChange(ctx, value)

	default:
		current, _ := control.Value.(string)
		cfg := InputConfig{Message: message, Default: current, Help: help}
		if cfg.Help == "" {
			cfg.Help = control.Placeholder
		}
		value, err := s.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		control.OnChange(ctx, value)
	}
	return nil
}

func (s *Session) jump(ctx context.Context, view *engine.StageView) (err error) {
	var labels []string
	var indices []int
	for _, tab := range view.Tabs {
		if !tab.Reached {
			continue
		}
		labels = append(labels, fmt.Sprintf("%d. %s", tab.Index+1, tab.Label))
		indices = append(indices, tab.Index)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Go to stage", Options: labels})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(indices) {
		return nil
	}
	return s.engine.JumpTo(ctx, indices[idx])
}

func (s *Session) printStage(view *engine.StageView) {
	for _, msg := range s.surface.drainAnnouncements() {
		fmt.Fprintf(s.out, "\n== %s ==\n", msg)
	}

	var tabs []string
	for _, tab := range view.Tabs {
		marker := "  "
		switch {
		case tab.Current:
			marker = "> "
		case !tab.Reached:
			marker = "x "
		}
		tabs = append(tabs, marker+tab.Label)
	}
	fmt.Fprintf(s.out, "[%s]\n\n", strings.Join(tabs, " | "))

	if view.Status != "" {
		prefix := "info"
		if view.StatusIsError {
			prefix = "error"
		}
		fmt.Fprintf(s.out, "(%s) %s\n\n", prefix, view.Status)
	}

	if view.IsSummary {
		s.printSummary(view)
		return
	}

	for _, control := range view.Controls {
		if control.Kind == schema.FieldTypePlainText {
			if control.Title != "" {
				fmt.Fprintf(s.out, "%s\n", control.Title)
			}
			if control.Text != "" {
				fmt.Fprint(s.out, s.surface.renderMarkdown(control.Text))
			}
			continue
		}
		required := ""
		if control.Required {
			required = " *"
		}
		fmt.Fprintf(s.out, "  %s%s: %s\n", control.Label, required, displayValue(control))
		for _, msg := range control.Errors {
			fmt.Fprintf(s.out, "    ! %s\n", msg)
		}
	}
	fmt.Fprintln(s.out)
}

func (s *Session) printSummary(view *engine.StageView) {
	for _, group := range view.Summary {
		fmt.Fprintf(s.out, "%s\n", group.Label)
		for _, item := range group.Items {
			fmt.Fprintf(s.out, "  %s: %s\n", item.Label, item.Value)
		}
		fmt.Fprintln(s.out)
	}
}

func displayValue(control engine.Control) string {
	switch v := control.Value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		if v == "" {
			return "—"
		}
		if control.Kind == schema.FieldTypeSelect || control.Kind == schema.FieldTypeRadio {
			for _, opt := range control.Options {
				if opt.Value == v {
					return opt.Label
				}
			}
		}
		if control.Kind == schema.FieldTypePassword {
			return strings.Repeat("*", len(v))
		}
		return v
	default:
		return "—"
	}
}
