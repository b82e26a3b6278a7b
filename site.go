// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	staticStylePath = "static/style.css"
	sitePerm        = 0o755
	pagePerm        = 0o644
)

// Page is one rendered output file.
type Page struct {
	// Name is the page file name relative to output directory.
	Name    string
	Kind    PageKind
	Content []byte
}

// Site is the set of rendered pages of one schema.
type Site struct {
	Format Format
	Pages  []Page
}

// pageJob renders one page from its view.
type pageJob struct {
	name string
	kind PageKind
	view func() (any, error)
}

// Size returns total size of rendered pages in bytes.
func (site *Site) Size() uint64 {
	var total uint64
	for _, page := range site.Pages {
		total += uint64(len(page.Content))
	}

	return total
}

// Page returns page by file name.
func (site *Site) Page(name string) (Page, bool) {
	for _, page := range site.Pages {
		if page.Name == name {
			return page, true
		}
	}

	return Page{}, false
}

// RenderSite renders index, message, model and concept pages concurrently.
// Pages keep a stable order: index, messages in declaration order, models,
// then concepts.
func RenderSite(ctx context.Context, schema *Schema, opt Options) (*Site, error) {
	opt, err := normalizeOptions(opt)
	if err != nil {
		return nil, err
	}

	templates, err := loadTemplates(opt, func(name string) bool {
		_, ok := schema.Model(name)
		return ok
	})
	if err != nil {
		return nil, err
	}

	jobs := sitePageJobs(schema, opt)
	if err := checkPageNames(jobs); err != nil {
		return nil, err
	}

	site := &Site{Format: opt.Format, Pages: make([]Page, len(jobs))}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opt.Jobs)
	for index, job := range jobs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			content, err := renderPage(templates[job.kind], job, opt.Format)
			if err != nil {
				return err
			}

			slogctx.Debug(groupCtx, "rendered page", slog.String("page", job.name), slog.Int("bytes", len(content)))
			site.Pages[index] = Page{Name: job.name, Kind: job.kind, Content: content}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return site, nil
}

// sitePageJobs lists every page of schema in output order.
func sitePageJobs(schema *Schema, opt Options) []pageJob {
	site := buildSiteView(schema, opt)
	jobs := []pageJob{{
		name: pageURL(opt.Format, string(PageIndex)),
		kind: PageIndex,
		view: func() (any, error) { return buildIndexView(schema, site), nil },
	}}

	for message := range schema.AllMessages() {
		jobs = append(jobs, pageJob{
			name: pageURL(opt.Format, message.ID().Page()),
			kind: PageMessage,
			view: func() (any, error) { return buildMessageView(schema, message, site, opt) },
		})
	}

	for _, model := range schema.Models {
		jobs = append(jobs, pageJob{
			name: pageURL(opt.Format, ModelPage(model.Name)),
			kind: PageModel,
			view: func() (any, error) { return buildModelView(schema, model, site), nil },
		})
	}

	for _, concept := range schema.Concepts {
		jobs = append(jobs, pageJob{
			name: pageURL(opt.Format, ConceptPage(concept.Key)),
			kind: PageConcept,
			view: func() (any, error) { return buildConceptView(schema, concept, site), nil },
		})
	}

	return jobs
}

// checkPageNames rejects jobs that would write the same file, such as models
// whose names differ only in letter case.
func checkPageNames(jobs []pageJob) error {
	seen := make(map[string]PageKind, len(jobs))
	for _, job := range jobs {
		if kind, exists := seen[job.name]; exists {
			return errors.Errorf("%w %q: produced by %s and %s pages", ErrDuplicatePage, job.name, kind, job.kind)
		}

		seen[job.name] = job.kind
	}

	return nil
}

// renderPage executes page template with its view.
func renderPage(tmpl pageTemplate, job pageJob, format Format) ([]byte, error) {
	view, err := job.view()
	if err != nil {
		return nil, errors.Errorf("page %q: %w", job.name, err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, view); err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w %q: %w", ErrExecuteTemplate, job.name, err))
	}

	if format == FormatMarkdown {
		return []byte(normalizeMarkdownOutput(out.String())), nil
	}

	return out.Bytes(), nil
}

// WriteSite writes rendered pages into dir; HTML sites also get static assets.
func WriteSite(ctx context.Context, site *Site, dir string) error {
	if err := os.MkdirAll(dir, sitePerm); err != nil {
		return wrapError(ErrWriteSite, err)
	}

	for _, page := range site.Pages {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		if err := os.WriteFile(filepath.Join(dir, page.Name), page.Content, pagePerm); err != nil {
			return wrapError(ErrWriteSite, err)
		}
	}

	if site.Format == FormatHTML {
		if err := writeStaticAssets(dir); err != nil {
			return err
		}
	}

	slogctx.Info(ctx, "site written",
		slog.String("dir", dir),
		slog.String("format", string(site.Format)),
		slog.Int("pages", len(site.Pages)),
		slog.String("size", humanize.Bytes(site.Size())),
	)

	return nil
}

// writeStaticAssets copies embedded stylesheet into dir/static.
func writeStaticAssets(dir string) error {
	data, err := staticFS.ReadFile(staticStylePath)
	if err != nil {
		return wrapError(ErrWriteSite, err)
	}

	target := filepath.Join(dir, filepath.FromSlash(staticStylePath))
	if err := os.MkdirAll(filepath.Dir(target), sitePerm); err != nil {
		return wrapError(ErrWriteSite, err)
	}

	if err := os.WriteFile(target, data, pagePerm); err != nil {
		return wrapError(ErrWriteSite, err)
	}

	return nil
}
