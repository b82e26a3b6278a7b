// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// descriptionMarkdown converts description text to HTML. Raw HTML inside
// descriptions is omitted by the default renderer.
var descriptionMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// markdownStructurePrefixes mark lines passed through without paragraph wrapping.
var markdownStructurePrefixes = []string{
	"#", ">", "- ", "* ", "+ ", "|", "```", "---", "***", "___",
}

// renderMarkdownHTML converts CommonMark description into an HTML fragment.
func renderMarkdownHTML(text string) (string, error) {
	text = strings.TrimSpace(normalizeLineEndings(text))
	if text == "" {
		return "", nil
	}

	var out bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(text), &out); err != nil {
		return "", wrapError(ErrExecuteTemplate, err)
	}

	return strings.TrimRight(out.String(), "\n"), nil
}

// mustJSONInline marshals values as single-line JSON text.
func mustJSONInline(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}

// sanitizeText trims and squashes repeated whitespace in plain text fields.
func sanitizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// normalizeWrapWidth validates wrap width and falls back to default.
func normalizeWrapWidth(value int) int {
	if value <= 0 {
		return defaultWrapWidth
	}

	return value
}

// formatDescriptionMarkdown wraps plain paragraphs and keeps markdown
// structures (lists, headings, tables, fences) line by line.
func formatDescriptionMarkdown(text string, wrapWidth int) string {
	text = strings.TrimSpace(normalizeLineEndings(text))
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	paragraph := make([]string, 0, 4)
	inFence := false

	flushParagraph := func() {
		if len(paragraph) > 0 {
			out = append(out, wrapParagraph(strings.Join(paragraph, " "), wrapWidth)...)
			paragraph = paragraph[:0]
		}
	}

	for _, rawLine := range lines {
		line := strings.TrimRight(rawLine, " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			flushParagraph()
			out = append(out, line)
			inFence = !inFence
		case inFence:
			out = append(out, line)
		case trimmed == "":
			flushParagraph()
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
		case isMarkdownStructuredLine(line):
			flushParagraph()
			out = append(out, line)
		default:
			paragraph = append(paragraph, trimmed)
		}
	}

	flushParagraph()
	return strings.Join(out, "\n")
}

// isMarkdownStructuredLine reports whether line must bypass paragraph wrapping.
func isMarkdownStructuredLine(line string) bool {
	if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return true
	}

	trimmed := strings.TrimSpace(line)
	for _, prefix := range markdownStructurePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}

	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}

	return digits > 0 && digits+1 < len(trimmed) &&
		(trimmed[digits] == '.' || trimmed[digits] == ')') && trimmed[digits+1] == ' '
}

// wrapParagraph wraps one plain paragraph to max rune width.
func wrapParagraph(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	out := make([]string, 0, 2)
	current := words[0]
	currentLen := utf8.RuneCountInString(current)
	for _, word := range words[1:] {
		wordLen := utf8.RuneCountInString(word)
		if currentLen+1+wordLen <= width {
			current += " " + word
			currentLen += 1 + wordLen
			continue
		}

		out = append(out, current)
		current = word
		currentLen = wordLen
	}

	return append(out, current)
}

// normalizeLineEndings converts CRLF/CR to LF.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// normalizeMarkdownOutput collapses repeated blank lines outside fenced blocks
// and guarantees one trailing newline.
func normalizeMarkdownOutput(text string) string {
	lines := strings.Split(normalizeLineEndings(text), "\n")
	out := make([]string, 0, len(lines))

	inFence := false
	for _, rawLine := range lines {
		line := strings.TrimRight(rawLine, " \t")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}

		if !inFence && trimmed == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}

		out = append(out, line)
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// escapeInline escapes backticks in inline code markdown segments.
func escapeInline(value string) string {
	return strings.ReplaceAll(value, "`", "\\`")
}

// escapeTableCell flattens value into one markdown table cell.
func escapeTableCell(value string) string {
	value = strings.Join(strings.Fields(normalizeLineEndings(value)), " ")
	return strings.ReplaceAll(value, "|", "\\|")
}

// escapeMarkdownText escapes characters with inline markdown meaning.
func escapeMarkdownText(value string) string {
	var out strings.Builder
	out.Grow(len(value))
	for _, r := range value {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '<', '>', '|':
			out.WriteByte('\\')
		}

		out.WriteRune(r)
	}

	return out.String()
}
