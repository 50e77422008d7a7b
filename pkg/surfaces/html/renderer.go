// Package html renders engine stage views into server-side HTML in the
// shape browser hosts progressively enhance: stable control IDs for focus
// restoration, error text bound to controls for assistive technology, and
// data attributes carrying the navigation affordances.
package html

import (
	"context"
	"fmt"
	"html"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "formflow-form"
	ClassStages  ChromeClass = "formflow-stages"
	ClassBlock   ChromeClass = "formflow-block"
	ClassField   ChromeClass = "formflow-field"
	ClassError   ChromeClass = "formflow-error"
	ClassStatus  ChromeClass = "formflow-status"
	ClassSummary ChromeClass = "formflow-summary"
	ClassActions ChromeClass = "formflow-actions"
)

// Renderer turns a StageView into a full HTML page. It is stateless; pair it
// with a Snapshot surface to serve the engine over HTTP.
type Renderer struct {
	templates *TemplateEngine
	sanitizer *bluemonday.Policy
	theme     *theme.RendererConfig
}

// Option configures the renderer.
type Option func(*Renderer)

// WithTheme attaches a go-theme renderer config; its name, variant, and CSS
// variables flow into the page shell.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithSanitizer overrides the HTML sanitizer applied to authored plain-text
// bodies and helper text. The default is bluemonday's UGC policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.sanitizer = policy
		}
	}
}

// WithTemplateEngine swaps the page-shell template engine.
func WithTemplateEngine(templates *TemplateEngine) Option {
	return func(r *Renderer) {
		if templates != nil {
			r.templates = templates
		}
	}
}

// New constructs a renderer with the embedded shell template and the UGC
// sanitizer policy.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{sanitizer: bluemonday.UGCPolicy()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.templates == nil {
		templates, err := NewTemplateEngine()
		if err != nil {
			return nil, err
		}
		r.templates = templates
	}
	return r, nil
}

// Render produces the full page for a stage view. The focusID, when not
// empty, marks the control that should receive autofocus (focus restoration
// for server-rendered hosts).
func (r *Renderer) Render(_ context.Context, view *engine.StageView, focusID string) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("html: view is nil")
	}

	body := r.renderBody(view, focusID)
	data := map[string]any{
		"title": pageTitle(view),
		"body":  body,
	}
	if r.theme != nil {
		data["theme_name"] = r.theme.Theme
		data["theme_variant"] = r.theme.Variant
		data["css_vars"] = cssVarsStyle(r.theme.CSSVars)
	}

	page, err := r.templates.Render("page", data)
	if err != nil {
		return nil, err
	}
	return []byte(page), nil
}

// RenderError produces the blocking schema-error page: the message replaces
// the form and no controls are emitted.
func (r *Renderer) RenderError(_ context.Context, message string) ([]byte, error) {
	var b strings.Builder
	b.WriteString(`<div class="formflow-schema-error" role="alert">`)
	b.WriteString(html.EscapeString(message))
	b.WriteString(`</div>`)

	page, err := r.templates.Render("page", map[string]any{
		"title": "Form unavailable",
		"body":  b.String(),
	})
	if err != nil {
		return nil, err
	}
	return []byte(page), nil
}

func (r *Renderer) renderBody(view *engine.StageView, focusID string) string {
	var b strings.Builder
	b.Grow(4096)

	fmt.Fprintf(&b, `<form method="post" class="%s" data-schema="%s" data-stage="%d" data-generation="%d"%s>`,
		ClassForm, html.EscapeString(view.SchemaID), view.Stage, view.Generation, boolAttr(view.Busy, " data-busy"))
	b.WriteByte('\n')

	r.renderIndicator(&b, view)
	r.renderStatus(&b, view)

	if view.IsSummary {
		r.renderSummary(&b, view)
	} else {
		for _, control := range view.Controls {
			r.renderControl(&b, view, control, focusID)
		}
	}

	r.renderActions(&b, view)
	b.WriteString("</form>\n")
	return b.String()
}

func (r *Renderer) renderIndicator(b *strings.Builder, view *engine.StageView) {
	fmt.Fprintf(b, `<nav class="%s" aria-label="Form stages"><ol>`, ClassStages)
	for _, tab := range view.Tabs {
		classes := []string{}
		if tab.Current {
			classes = append(classes, "is-current")
		}
		if tab.Reached {
			classes = append(classes, "is-reached")
		}
		if tab.IsSummary {
			classes = append(classes, "is-summary")
		}
		fmt.Fprintf(b, `<li class="%s">`, strings.Join(classes, " "))
		if tab.Reached && !tab.Current {
			fmt.Fprintf(b, `<button type="submit" name="_jump" value="%d">%s</button>`, tab.Index, html.EscapeString(tab.Label))
		} else {
			fmt.Fprintf(b, `<span%s>%s</span>`, boolAttr(tab.Current, ` aria-current="step"`), html.EscapeString(tab.Label))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol></nav>\n")
}

func (r *Renderer) renderStatus(b *strings.Builder, view *engine.StageView) {
	if view.Status == "" {
		return
	}
	role := "status"
	if view.StatusIsError {
		role = "alert"
	}
	fmt.Fprintf(b, `<div class="%s" role="%s">%s<button type="submit" name="_dismiss" value="1" aria-label="Dismiss">&times;</button></div>`,
		ClassStatus, role, html.EscapeString(view.Status))
	b.WriteByte('\n')
}

func (r *Renderer) renderControl(b *strings.Builder, view *engine.StageView, control engine.Control, focusID string) {
	if control.Kind == schema.FieldTypePlainText {
		fmt.Fprintf(b, `<div class="%s">`, ClassBlock)
		if control.Title != "" {
			fmt.Fprintf(b, "<h3>%s</h3>", html.EscapeString(control.Title))
		}
		if control.Text != "" {
			fmt.Fprintf(b, "<div>%s</div>", r.sanitizer.Sanitize(control.Text))
		}
		b.WriteString("</div>\n")
		return
	}

	fmt.Fprintf(b, `<div class="%s" data-field="%s">`, ClassField, html.EscapeString(control.Name))
	errorID := control.ID + "-error"
	hasErrors := len(control.Errors) > 0

	if control.Kind != schema.FieldTypeCheckbox {
		fmt.Fprintf(b, `<label for="%s">%s%s</label>`, control.ID, html.EscapeString(control.Label), boolStr(control.Required, `<span aria-hidden="true">*</span>`))
	}

	switch control.Kind {
	case schema.FieldTypeCheckbox:
		checked, _ := control.Value.(bool)
		fmt.Fprintf(b, `<input type="checkbox" id="%s" name="%s"%s%s%s%s%s>`,
			control.ID, html.EscapeString(control.Name),
			boolAttr(checked, " checked"),
			commonAttrs(control, errorID, hasErrors, view.Busy),
			attrString(control.Attributes),
			boolAttr(control.ID == focusID, " autofocus"),
			boolAttr(control.Controller, ` data-controller="true"`))
		fmt.Fprintf(b, `<label for="%s">%s</label>`, control.ID, html.EscapeString(control.Label))

	case schema.FieldTypeSelect:
		fmt.Fprintf(b, `<select id="%s" name="%s"%s%s%s>`,
			control.ID, html.EscapeString(control.Name),
			commonAttrs(control, errorID, hasErrors, view.Busy),
			attrString(control.Attributes),
			boolAttr(control.ID == focusID, " autofocus"))
		b.WriteString(`<option value=""></option>`)
		for _, opt := range control.Options {
			fmt.Fprintf(b, `<option value="%s"%s>%s</option>`,
				html.EscapeString(opt.Value), boolAttr(opt.Selected, " selected"), html.EscapeString(opt.Label))
		}
		b.WriteString("</select>")

	case schema.FieldTypeRadio:
		fmt.Fprintf(b, `<fieldset id="%s"><legend>%s</legend>`, control.ID, html.EscapeString(control.Label))
		for _, opt := range control.Options {
			fmt.Fprintf(b, `<input type="radio" id="%s" name="%s" value="%s"%s%s%s><label for="%s">%s</label>`,
				opt.ID, html.EscapeString(control.Name), html.EscapeString(opt.Value),
				boolAttr(opt.Selected, " checked"),
				commonAttrs(control, errorID, hasErrors, view.Busy),
				boolAttr(opt.ID == focusID || (control.ID == focusID && opt.Selected), " autofocus"),
				opt.ID, html.EscapeString(opt.Label))
		}
		b.WriteString("</fieldset>")

	case schema.FieldTypeTextarea:
		text, _ := control.Value.(string)
		fmt.Fprintf(b, `<textarea id="%s" name="%s"%s%s%s%s>%s</textarea>`,
			control.ID, html.EscapeString(control.Name),
			placeholderAttr(control.Placeholder),
			commonAttrs(control, errorID, hasErrors, view.Busy),
			attrString(control.Attributes),
			boolAttr(control.ID == focusID, " autofocus"),
			html.EscapeString(text))

	default:
		text, _ := control.Value.(string)
		fmt.Fprintf(b, `<input type="%s" id="%s" name="%s" value="%s"%s%s%s%s%s>`,
			inputType(control.Kind), control.ID, html.EscapeString(control.Name), html.EscapeString(text),
			placeholderAttr(control.Placeholder),
			commonAttrs(control, errorID, hasErrors, view.Busy),
			attrString(control.Attributes),
			boolAttr(control.ID == focusID, " autofocus"),
			boolAttr(control.Controller, ` data-controller="true"`))
	}

	if control.HelperText != "" {
		fmt.Fprintf(b, `<p class="formflow-helper" id="%s-helper">%s</p>`, control.ID, r.sanitizer.Sanitize(control.HelperText))
	}
	if hasErrors {
		fmt.Fprintf(b, `<p class="%s" id="%s" role="alert">%s</p>`, ClassError, errorID, html.EscapeString(strings.Join(control.Errors, " ")))
	}
	b.WriteString("</div>\n")
}

func (r *Renderer) renderSummary(b *strings.Builder, view *engine.StageView) {
	fmt.Fprintf(b, `<section class="%s" aria-label="%s">`, ClassSummary, html.EscapeString(view.Label))
	for _, group := range view.Summary {
		fmt.Fprintf(b, `<h3>%s</h3><dl>`, html.EscapeString(group.Label))
		for _, item := range group.Items {
			fmt.Fprintf(b, `<dt>%s</dt><dd data-field="%s">%s</dd>`,
				html.EscapeString(item.Label), html.EscapeString(item.Name), html.EscapeString(item.Value))
		}
		b.WriteString("</dl>")
	}
	b.WriteString("</section>\n")
}

func (r *Renderer) renderActions(b *strings.Builder, view *engine.StageView) {
	fmt.Fprintf(b, `<div class="%s">`, ClassActions)
	if view.CanPrev {
		b.WriteString(`<button type="submit" name="_nav" value="prev">Previous</button>`)
	}
	if view.CanNext {
		b.WriteString(`<button type="submit" name="_nav" value="next">Next</button>`)
	}
	if view.CanSubmit {
		fmt.Fprintf(b, `<button type="submit" name="_nav" value="submit"%s>Submit</button>`, boolAttr(view.Busy, ` disabled aria-busy="true"`))
	}
	b.WriteString(`<button type="submit" name="_nav" value="reset">Reset</button>`)
	b.WriteString("</div>\n")
}

func commonAttrs(control engine.Control, errorID string, hasErrors, busy bool) string {
	var b strings.Builder
	if control.Required {
		b.WriteString(" required")
	}
	if busy {
		b.WriteString(" disabled")
	}
	if hasErrors {
		fmt.Fprintf(&b, ` aria-invalid="true" aria-describedby="%s"`, errorID)
	} else if control.HelperText != "" {
		fmt.Fprintf(&b, ` aria-describedby="%s-helper"`, control.ID)
	}
	return b.String()
}

// attrString renders the declared attribute bag verbatim: presence entries
// emit the bare attribute, valued entries emit name="value".
func attrString(attrs []engine.AttrView) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, attr := range attrs {
		if attr.Presence {
			fmt.Fprintf(&b, " %s", html.EscapeString(attr.Name))
			continue
		}
		fmt.Fprintf(&b, ` %s="%s"`, html.EscapeString(attr.Name), html.EscapeString(attr.Value))
	}
	return b.String()
}

func placeholderAttr(placeholder string) string {
	if placeholder == "" {
		return ""
	}
	return fmt.Sprintf(` placeholder="%s"`, html.EscapeString(placeholder))
}

func inputType(kind schema.FieldType) string {
	switch kind {
	case schema.FieldTypeDate:
		return "date"
	case schema.FieldTypeTime:
		return "time"
	case schema.FieldTypeNumber:
		return "number"
	case schema.FieldTypeEmail:
		return "email"
	case schema.FieldTypeTel:
		return "tel"
	case schema.FieldTypePassword:
		return "password"
	case schema.FieldTypeURL:
		return "url"
	case schema.FieldTypeHidden:
		return "hidden"
	default:
		return "text"
	}
}

func pageTitle(view *engine.StageView) string {
	if view.Title != "" {
		return view.Title
	}
	if view.Label != "" {
		return view.Label
	}
	return view.SchemaID
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	for name, value := range vars {
		fmt.Fprintf(&b, "%s: %s; ", name, value)
	}
	return strings.TrimSpace(b.String())
}

func boolAttr(cond bool, attr string) string {
	if cond {
		return attr
	}
	return ""
}

func boolStr(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}
