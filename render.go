// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	// FormatHTML renders the site as HTML pages with static assets.
	FormatHTML Format = "html"
	// FormatMarkdown renders the site as CommonMark pages.
	FormatMarkdown Format = "markdown"
)

// Format selects generated page format.
type Format string

const (
	// PageIndex is the site entry page.
	PageIndex PageKind = "index"
	// PageMessage is one message variant page.
	PageMessage PageKind = "message"
	// PageModel is one model page.
	PageModel PageKind = "model"
	// PageConcept is one concept page.
	PageConcept PageKind = "concept"
)

// PageKind names one page template.
type PageKind string

// pageKinds lists all page kinds in template loading order.
var pageKinds = []PageKind{PageIndex, PageMessage, PageModel, PageConcept}

const (
	// defaultWrapWidth wraps plain markdown description paragraphs at this width.
	defaultWrapWidth = 80
	// defaultTitle is used when neither caller nor schema provide a title.
	defaultTitle = "protocol reference"
)

// Options configures site rendering.
type Options struct {
	// Format selects output format; defaults to html.
	Format Format
	// Title overrides schema title.
	Title string
	// TemplateDir holds "<kind>.gotmpl" files overriding built-in templates.
	TemplateDir string
	// Jobs limits concurrent page rendering; zero uses GOMAXPROCS.
	Jobs int
	// ExampleMode enables example payloads on message pages when set.
	ExampleMode ExampleMode
	// ExampleFormat selects example payload encoding; defaults to json.
	ExampleFormat ExampleFormat
	// WrapWidth wraps plain description paragraphs in markdown output.
	WrapWidth int
}

// Generate parses, resolves and renders schema bytes into outputDir.
// Nothing is written unless the whole schema resolves and every page renders.
func Generate(ctx context.Context, data []byte, outputDir string, opt Options) (*Site, error) {
	schema, err := ParseAndResolve(data)
	if err != nil {
		return nil, err
	}

	return generateSchema(ctx, schema, outputDir, opt)
}

// GenerateFile reads schema from file and renders it into outputDir.
func GenerateFile(ctx context.Context, path, outputDir string, opt Options) (*Site, error) {
	schema, err := ResolveFile(path)
	if err != nil {
		return nil, err
	}

	return generateSchema(ctx, schema, outputDir, opt)
}

// generateSchema renders resolved schema and writes the site.
func generateSchema(ctx context.Context, schema *Schema, outputDir string, opt Options) (*Site, error) {
	site, err := RenderSite(ctx, schema, opt)
	if err != nil {
		return nil, err
	}

	if err := WriteSite(ctx, site, outputDir); err != nil {
		return nil, err
	}

	return site, nil
}

// BuiltinTemplateNames returns all available built-in template names.
func BuiltinTemplateNames() []string {
	names := make([]string, 0, len(builtInTemplateFiles))
	for name := range builtInTemplateFiles {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// BuiltinTemplate returns one built-in template by "<format>/<kind>" name.
func BuiltinTemplate(name string) (string, error) {
	name = normalizeTemplateName(name)
	path, ok := builtInTemplateFiles[name]
	if !ok {
		return "", errors.Errorf("%w %q", ErrUnknownBuiltinTemplate, name)
	}

	data, err := templateFS.ReadFile(path)
	if err != nil {
		return "", wrapError(ErrReadBuiltinTemplate, err)
	}

	return string(data), nil
}

// ParseFormat validates and normalizes output format name.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatHTML):
		return FormatHTML, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", errors.Errorf("%w %q", ErrUnknownFormat, value)
	}
}

// Extension returns page file extension of the format.
func (format Format) Extension() string {
	if format == FormatMarkdown {
		return ".md"
	}

	return ".html"
}

// normalizeOptions validates options and fills defaults.
func normalizeOptions(opt Options) (Options, error) {
	format, err := ParseFormat(string(opt.Format))
	if err != nil {
		return Options{}, err
	}

	opt.Format = format
	opt.Title = sanitizeText(opt.Title)
	opt.TemplateDir = strings.TrimSpace(opt.TemplateDir)
	opt.WrapWidth = normalizeWrapWidth(opt.WrapWidth)
	if opt.Jobs <= 0 {
		opt.Jobs = runtime.GOMAXPROCS(0)
	}

	if strings.TrimSpace(string(opt.ExampleMode)) != "" {
		if opt.ExampleMode, err = normalizeExampleMode(opt.ExampleMode); err != nil {
			return Options{}, err
		}

		if strings.TrimSpace(string(opt.ExampleFormat)) == "" {
			opt.ExampleFormat = ExampleFormatJSON
		}

		if opt.ExampleFormat, err = normalizeExampleFormat(opt.ExampleFormat); err != nil {
			return Options{}, err
		}
	}

	return opt, nil
}
