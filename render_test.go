// SPDX-License-Identifier: AGPL-3.0-only
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderSitePageOrder(t *testing.T) {
	t.Parallel()

	site := renderFixtureSite(t, Options{Jobs: 2})

	names := make([]string, 0, len(site.Pages))
	for _, page := range site.Pages {
		names = append(names, page.Name)
	}

	require.Equal(t, []string{
		"index.html",
		"message-chat-send-toapp.html",
		"message-chat-ack-fromapp.html",
		"message-receivers-update-fromapp.html",
		"message-receivers-update-toapp.html",
		"message-receivers-ping-bidirectional.html",
		"model-receiver.html",
		"model-quote.html",
		"concept-receiver-types.html",
	}, names)
}

func TestRenderSiteHTMLIndex(t *testing.T) {
	t.Parallel()

	index := pageContent(t, renderFixtureSite(t, Options{}), "index.html")
	assertContains(t, index, "<title>Chat protocol</title>")
	assertContains(t, index, "Version 2.1")
	assertContains(t, index, "<strong>app</strong>")
	assertContains(t, index, `<a href="message-chat-send-toapp.html">chat/send</a>`)
	assertContains(t, index, `<a href="model-quote.html">Quote</a>`)
	assertContains(t, index, `<a href="concept-receiver-types.html">Receiver types</a>`)
	assertContains(t, index, "The operation timed out.")

	require.Less(t, strings.Index(index, "model-quote.html"), strings.Index(index, "model-receiver.html"))
}

func TestRenderSiteHTMLMessage(t *testing.T) {
	t.Parallel()

	site := renderFixtureSite(t, Options{})

	send := pageContent(t, site, "message-chat-send-toapp.html")
	assertContains(t, send, "Message: chat / send (client -&gt; app)")
	assertContains(t, send, `<a href="message-chat-ack-fromapp.html">chat/ack</a>`)
	assertContains(t, send, "Sent in response:")
	assertContains(t, send, "The receiver did not answer in time.")
	assertContains(t, send, "<code>internalError</code>")
	assertNotContains(t, send, "The operation timed out.")
	assertContains(t, send, `<code><a href="model-receiver.html">Receiver</a></code>`)
	assertNotContains(t, send, `class="example"`)

	ack := pageContent(t, site, "message-chat-ack-fromapp.html")
	assertContains(t, ack, "Sent in response to:")
	assertContains(t, ack, `<a href="message-chat-send-toapp.html">chat/send</a>`)
	assertContains(t, ack, "Returned in the <code>error</code> argument.")

	update := pageContent(t, site, "message-receivers-update-fromapp.html")
	assertContains(t, update, `<code>Array&lt;<a href="model-receiver.html">Receiver</a>&gt;</code>`)
	assertContains(t, update, `<a href="message-receivers-update-toapp.html">receivers/update</a>`)

	ping := pageContent(t, site, "message-receivers-ping-bidirectional.html")
	assertContains(t, ping, "(none)")
}

func TestRenderSiteHTMLModelAndConcept(t *testing.T) {
	t.Parallel()

	site := renderFixtureSite(t, Options{})

	receiver := pageContent(t, site, "model-receiver.html")
	assertContains(t, receiver, "Model: Receiver")
	assertContains(t, receiver, `<a href="message-chat-send-toapp.html">chat/send</a> (client -&gt; app)`)
	assertContains(t, receiver, `<a href="message-receivers-update-fromapp.html">receivers/update</a>`)

	quote := pageContent(t, site, "model-quote.html")
	assertContains(t, quote, `<code><a href="model-quote.html">Quote</a></code>`)

	concept := pageContent(t, site, "concept-receiver-types.html")
	assertContains(t, concept, "Concept: Receiver types")
	assertContains(t, concept, "<li>contact</li>")
}

func TestRenderSiteMarkdown(t *testing.T) {
	t.Parallel()

	site := renderFixtureSite(t, Options{Format: FormatMarkdown, Title: "Custom title"})
	require.Equal(t, FormatMarkdown, site.Format)

	index := pageContent(t, site, "index.md")
	assertContains(t, index, "# Custom title\n")
	assertContains(t, index, "| [chat/send](message-chat-send-toapp.md) | client -> app | Send a chat message. |")
	assertContains(t, index, "- [Receiver types](concept-receiver-types.md)")
	assertNotContains(t, index, "\n\n\n")

	send := pageContent(t, site, "message-chat-send-toapp.md")
	assertContains(t, send, "# Message: chat / send (client -> app)")
	assertContains(t, send, "| [chat/ack](message-chat-ack-fromapp.md) | app -> client | Always sent once the message has been stored.")
	assertContains(t, send, "| `quote` | [Quote](model-quote.md) | yes | yes | Quoted message. |")
	assertContains(t, send, "[Custom title](index.md)")
	require.True(t, strings.HasSuffix(send, "\n"))
	require.False(t, strings.HasSuffix(send, "\n\n"))

	update := pageContent(t, site, "message-receivers-update-fromapp.md")
	assertContains(t, update, `Array\<[Receiver](model-receiver.md)\>`)
}

func TestRenderSiteMarkdownEmbedsExamples(t *testing.T) {
	t.Parallel()

	site := renderFixtureSite(t, Options{
		Format:        FormatMarkdown,
		ExampleMode:   ExampleModeRequired,
		ExampleFormat: ExampleFormatYAML,
	})

	send := pageContent(t, site, "message-chat-send-toapp.md")
	assertContains(t, send, "```yaml\n")
	assertContains(t, send, "text: <string>")
	assertNotContains(t, send, "timestamp: 0")
}

func TestRenderSiteHTMLEscapesRawHTML(t *testing.T) {
	t.Parallel()

	schema := mustResolve(t, `
title: <b>bold</b>
description: before <script>alert(1)</script> after
messages:
  chat:
    send:
      - direction: toapp
        summary: <i>summary</i>
`)

	site, err := RenderSite(t.Context(), schema, Options{})
	require.NoError(t, err)

	index := pageContent(t, site, "index.html")
	assertNotContains(t, index, "<script>")
	assertNotContains(t, index, "<i>summary</i>")
	assertContains(t, index, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestRenderSiteCustomTemplateDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.gotmpl"), []byte("custom {{ .Title }} {{ len .Types }}"), 0o600))

	site := renderFixtureSite(t, Options{Format: FormatMarkdown, TemplateDir: dir})
	require.Equal(t, "custom Chat protocol 2\n", pageContent(t, site, "index.md"))
	assertContains(t, pageContent(t, site, "model-quote.md"), "# Model: Quote")
}

func TestRenderSiteTemplateErrors(t *testing.T) {
	t.Parallel()

	schema := loadFixtureSchema(t)

	parseDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parseDir, "model.gotmpl"), []byte("{{ .Name "), 0o600))
	_, err := RenderSite(t.Context(), schema, Options{TemplateDir: parseDir})
	require.ErrorIs(t, err, ErrParseTemplate)

	execDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(execDir, "concept.gotmpl"), []byte("{{ .Missing }}"), 0o600))
	_, err = RenderSite(t.Context(), schema, Options{Format: FormatMarkdown, TemplateDir: execDir})
	require.ErrorIs(t, err, ErrExecuteTemplate)

	_, err = RenderSite(t.Context(), schema, Options{Format: "pdf"})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestGenerateWritesSite(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(filepath.Join("testdata", "schema.fixture.yaml"))
	require.NoError(t, err)

	htmlDir := filepath.Join(t.TempDir(), "html")
	site, err := Generate(t.Context(), data, htmlDir, Options{})
	require.NoError(t, err)
	require.Len(t, site.Pages, 9)
	require.NotZero(t, site.Size())
	require.FileExists(t, filepath.Join(htmlDir, "index.html"))
	require.FileExists(t, filepath.Join(htmlDir, "message-receivers-ping-bidirectional.html"))
	require.FileExists(t, filepath.Join(htmlDir, "static", "style.css"))

	mdDir := filepath.Join(t.TempDir(), "md")
	_, err = GenerateFile(t.Context(), filepath.Join("testdata", "schema.fixture.yaml"), mdDir, Options{Format: FormatMarkdown})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(mdDir, "concept-receiver-types.md"))
	require.NoDirExists(t, filepath.Join(mdDir, "static"))
}

func TestGenerateWritesNothingOnResolutionFailure(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	_, err := Generate(t.Context(), []byte(`
messages:
  chat:
    send:
      - direction: toapp
        replyTo:
          - message: chat/ack
`), dir, Options{})
	require.ErrorIs(t, err, ErrUnresolvableReference)
	require.NoDirExists(t, dir)
}

func TestBuiltinTemplates(t *testing.T) {
	t.Parallel()

	names := BuiltinTemplateNames()
	require.Len(t, names, 8)
	for _, name := range names {
		text, err := BuiltinTemplate(name)
		require.NoError(t, err, name)
		require.NotEmpty(t, text, name)
	}

	alias, err := BuiltinTemplate(" MD/Index ")
	require.NoError(t, err)
	direct, err := BuiltinTemplate("markdown/index")
	require.NoError(t, err)
	require.Equal(t, direct, alias)

	_, err = BuiltinTemplate("html/missing")
	require.ErrorIs(t, err, ErrUnknownBuiltinTemplate)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Format{
		"":         FormatHTML,
		"HTML":     FormatHTML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := ParseFormat("pdf")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLinkModelNames(t *testing.T) {
	t.Parallel()

	isModel := func(name string) bool { return name == "Receiver" }
	link := func(name string) string { return "[" + name + "]" }

	require.Equal(t, "Map<string, [Receiver]>", linkModelNames("Map<string, Receiver>", isModel, link, func(s string) string { return s }))
	require.Equal(t, "ReceiverList", linkModelNames("ReceiverList", isModel, link, func(s string) string { return s }))
	require.Equal(t, "", linkModelNames("", isModel, link, strings.ToUpper))
}

func TestFormatDescriptionMarkdown(t *testing.T) {
	t.Parallel()

	got := formatDescriptionMarkdown("one two three four five six\r\n\r\n\r\n- keep this list item as is\n```\ncode   stays\n```", 10)
	require.Equal(t, "one two\nthree four\nfive six\n\n- keep this list item as is\n```\ncode   stays\n```", got)
}

func TestMarkdownHeadingAnchor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "chat-send", markdownHeadingAnchor(" Chat / Send "))
	require.Equal(t, "error-codes", markdownHeadingAnchor("Error codes!"))
	require.Equal(t, "", markdownHeadingAnchor("  "))
}

func TestRenderSiteRejectsPageNameCollisions(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"model case": `
models:
  Receiver: {}
  receiver: {}
`,
		"message dashes": `
messages:
  chat-room:
    join: [{direction: toapp}]
  chat:
    room-join: [{direction: toapp}]
`,
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			schema, err := ParseAndResolve([]byte(text))
			require.NoError(t, err)

			_, err = RenderSite(t.Context(), schema, Options{})
			require.ErrorIs(t, err, ErrDuplicatePage)
		})
	}
}

func TestGenerateDuplicateModelPageWritesNothing(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "site")
	_, err := Generate(t.Context(), []byte("models:\n  Quote: {}\n  QUOTE: {}\n"), dir, Options{Format: FormatMarkdown})
	require.ErrorIs(t, err, ErrDuplicatePage)
	require.Contains(t, err.Error(), "model-quote.md")

	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr))
}

func renderFixtureSite(t *testing.T, opt Options) *Site {
	t.Helper()

	site, err := RenderSite(t.Context(), loadFixtureSchema(t), opt)
	require.NoError(t, err)
	return site
}

func pageContent(t *testing.T, site *Site, name string) string {
	t.Helper()

	page, ok := site.Page(name)
	require.Truef(t, ok, "page %s not rendered", name)
	return string(page.Content)
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()

	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n\nactual:\n%s", needle, haystack)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()

	if strings.Contains(haystack, needle) {
		t.Fatalf("expected output not to contain %q\n\nactual:\n%s", needle, haystack)
	}
}
