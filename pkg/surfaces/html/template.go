package html

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplateEngine renders the page shell around the generated form markup.
// It is pongo2-backed with a small template cache; hosts can point it at
// their own template set to restyle the shell.
type TemplateEngine struct {
	mu  sync.RWMutex
	set *pongo2.TemplateSet

	templates map[string]*pongo2.Template
	ext       string
}

// TemplateOption configures the engine before construction.
type TemplateOption func(*templateConfig)

type templateConfig struct {
	files     fs.FS
	baseDir   string
	extension string
}

// WithTemplatesFS loads templates from an fs.FS instead of the embedded set.
func WithTemplatesFS(files fs.FS) TemplateOption {
	return func(cfg *templateConfig) {
		cfg.files = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(dir string) TemplateOption {
	return func(cfg *templateConfig) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithEngineOptions exists for compatibility with hosts configuring a shared
// go-template engine; the shell renderer currently takes no engine options.
func WithEngineOptions(_ ...gotemplatepkg.Option) TemplateOption {
	return func(*templateConfig) {}
}

// NewTemplateEngine constructs the shell renderer, defaulting to the
// embedded templates.
func NewTemplateEngine(options ...TemplateOption) (*TemplateEngine, error) {
	cfg := &templateConfig{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("html: create template loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}
	if len(loaders) == 0 {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("html: embedded templates: %w", err)
		}
		loaders = append(loaders, pongo2.NewFSLoader(sub))
	}

	return &TemplateEngine{
		set:       pongo2.NewSet("formflow", loaders...),
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
	}, nil
}

// Render executes a named template with the given context.
func (e *TemplateEngine) Render(name string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("html: template engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.get(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(pongo2.Context(data), &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("html: execute template %q: %w", path, err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) get(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}
