// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// templateFS stores built-in page templates embedded into the package.
//
//go:embed templates/html/*.gotmpl templates/markdown/*.gotmpl
var templateFS embed.FS

// staticFS stores assets copied next to generated HTML pages.
//
//go:embed static
var staticFS embed.FS

// builtInTemplateFiles maps "<format>/<kind>" aliases to embedded file paths.
var builtInTemplateFiles = map[string]string{
	"html/index":       "templates/html/index.html.gotmpl",
	"html/message":     "templates/html/message.html.gotmpl",
	"html/model":       "templates/html/model.html.gotmpl",
	"html/concept":     "templates/html/concept.html.gotmpl",
	"markdown/index":   "templates/markdown/index.md.gotmpl",
	"markdown/message": "templates/markdown/message.md.gotmpl",
	"markdown/model":   "templates/markdown/model.md.gotmpl",
	"markdown/concept": "templates/markdown/concept.md.gotmpl",
}

// pageTemplate is implemented by both html and text templates.
type pageTemplate interface {
	Execute(w io.Writer, data any) error
}

// modelLookup reports whether a name is a declared model.
type modelLookup func(name string) bool

// loadTemplates resolves custom or built-in template of every page kind.
func loadTemplates(opt Options, isModel modelLookup) (map[PageKind]pageTemplate, error) {
	out := make(map[PageKind]pageTemplate, len(pageKinds))
	for _, kind := range pageKinds {
		name := string(opt.Format) + "/" + string(kind)
		text, err := templateText(opt, kind)
		if err != nil {
			return nil, err
		}

		parsed, err := parsePageTemplate(opt, name, text, isModel)
		if err != nil {
			return nil, errors.WithStack(fmt.Errorf("%w %q: %w", ErrParseTemplate, name, err))
		}

		out[kind] = parsed
	}

	return out, nil
}

// templateText reads "<kind>.gotmpl" from custom directory or falls back to built-in.
func templateText(opt Options, kind PageKind) (string, error) {
	if opt.TemplateDir != "" {
		path := filepath.Join(opt.TemplateDir, string(kind)+".gotmpl")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return string(data), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", errors.WithStack(fmt.Errorf("%w %q: %w", ErrParseTemplate, path, err))
		}
	}

	return BuiltinTemplate(string(opt.Format) + "/" + string(kind))
}

// parsePageTemplate parses template text with format specific engine and funcs.
func parsePageTemplate(opt Options, name, text string, isModel modelLookup) (pageTemplate, error) {
	if opt.Format == FormatMarkdown {
		return texttemplate.New(name).Funcs(markdownTemplateFuncs(opt, isModel)).Parse(text)
	}

	return htmltemplate.New(name).Funcs(htmlTemplateFuncs(opt, isModel)).Parse(text)
}

// htmlTemplateFuncs provides functions available inside html page templates.
func htmlTemplateFuncs(opt Options, isModel modelLookup) htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"markdown": func(text string) (htmltemplate.HTML, error) {
			rendered, err := renderMarkdownHTML(text)
			//nolint:gosec // goldmark escapes raw HTML unless explicitly configured otherwise.
			return htmltemplate.HTML(rendered), err
		},
		"linkModels": func(text string) htmltemplate.HTML {
			//nolint:gosec // every non-link segment is escaped by linkModelNames.
			return htmltemplate.HTML(linkModelNames(text, isModel, func(name string) string {
				return `<a href="` + htmltemplate.HTMLEscapeString(pageURL(opt.Format, ModelPage(name))) + `">` +
					htmltemplate.HTMLEscapeString(name) + `</a>`
			}, htmltemplate.HTMLEscapeString))
		},
		"pageURL": func(page string) string {
			return pageURL(opt.Format, page)
		},
		"headingAnchor": markdownHeadingAnchor,
	}
}

// markdownTemplateFuncs provides functions available inside markdown page templates.
func markdownTemplateFuncs(opt Options, isModel modelLookup) texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"markdown": func(text string) string {
			return formatDescriptionMarkdown(text, opt.WrapWidth)
		},
		"linkModels": func(text string) string {
			return linkModelNames(text, isModel, func(name string) string {
				return "[" + escapeMarkdownText(name) + "](" + pageURL(opt.Format, ModelPage(name)) + ")"
			}, escapeMarkdownText)
		},
		"pageURL": func(page string) string {
			return pageURL(opt.Format, page)
		},
		"inline":        escapeInline,
		"cell":          escapeTableCell,
		"headingAnchor": markdownHeadingAnchor,
	}
}

// pageURL returns relative page file name for format.
func pageURL(format Format, page string) string {
	return page + format.Extension()
}

// normalizeTemplateName normalizes built-in template identifiers.
func normalizeTemplateName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if rest, ok := strings.CutPrefix(name, "md/"); ok {
		return string(FormatMarkdown) + "/" + rest
	}

	return name
}

// linkModelNames wraps identifiers naming declared models (e.g. in "Array<Receiver>")
// with links and escapes the remaining text.
func linkModelNames(text string, isModel modelLookup, link func(name string) string, escape func(string) string) string {
	var out strings.Builder
	out.Grow(len(text))

	runes := []rune(text)
	start := 0
	flushPlain := func(end int) {
		if end > start {
			out.WriteString(escape(string(runes[start:end])))
		}
	}

	for index := 0; index < len(runes); {
		if !isIdentifierRune(runes[index]) {
			index++
			continue
		}

		end := index
		for end < len(runes) && isIdentifierRune(runes[end]) {
			end++
		}

		word := string(runes[index:end])
		if isModel != nil && isModel(word) {
			flushPlain(index)
			out.WriteString(link(word))
			start = end
		}

		index = end
	}

	flushPlain(len(runes))
	return out.String()
}

// isIdentifierRune reports whether rune can be part of a model name.
func isIdentifierRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// markdownHeadingAnchor converts heading text into a markdown anchor slug.
func markdownHeadingAnchor(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}

	var out strings.Builder
	out.Grow(len(trimmed))

	lastDash := false
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			out.WriteRune(r)
			lastDash = false
		case unicode.IsSpace(r), r == '-', r == '_', r == '/':
			if lastDash || out.Len() == 0 {
				continue
			}

			out.WriteByte('-')
			lastDash = true
		}
	}

	return strings.Trim(out.String(), "-")
}
