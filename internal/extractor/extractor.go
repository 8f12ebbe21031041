// Package extractor pulls raw project fields out of a repository's
// README, metadata file and asset directory.
package extractor

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/logger"
	"github.com/custodia-labs/repogallery/internal/normalisers/markdown"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// imageExtensions are the file types taken from asset directories.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true,
}

// Extractor reads the configured paths of a repository.
type Extractor struct {
	fetcher driven.ContentFetcher
	paths   []domain.ContentPath
	readme  *markdown.Parser
}

// New creates an extractor. Nil paths means DefaultContentPaths.
func New(fetcher driven.ContentFetcher, paths []domain.ContentPath) *Extractor {
	if paths == nil {
		paths = domain.DefaultContentPaths()
	}
	return &Extractor{
		fetcher: fetcher,
		paths:   paths,
		readme:  markdown.NewParser(),
	}
}

// CallsPerRepository is the number of API requests one Extract makes
// when nothing fails.
func (e *Extractor) CallsPerRepository() int {
	return len(e.paths)
}

// collected accumulates per-source values before precedence is applied.
type collected struct {
	readmeTitle  string
	firstLine    string
	readmeDesc   string
	metaTitle    string
	metaDesc     string
	contributors []string
	assets       []domain.RawAsset
}

// Extract fetches every configured path. It never returns an error:
// missing paths become warnings, and a fetch error stops extraction
// with Failed set while keeping what was gathered.
func (e *Extractor) Extract(ctx context.Context, repo domain.Repository) (*domain.ExtractedFields, []string) {
	var (
		fields   domain.ExtractedFields
		c        collected
		warnings []string
	)

	for _, p := range e.paths {
		if err := ctx.Err(); err != nil {
			warnings = append(warnings, fmt.Sprintf("extraction stopped: %v", err))
			fields.Failed = true
			break
		}

		fields.Attempted++
		found, err := e.extractPath(ctx, repo, p, &c, &warnings)
		if err != nil {
			if domain.IsItemFailure(err) {
				logger.Warn("[extractor] %s: %s: %v", repo.ID, p.Path, err)
			} else {
				logger.Error("[extractor] %s: %s: %v", repo.ID, p.Path, err)
			}
			warnings = append(warnings, fmt.Sprintf("%s: %v", p.Name(), err))
			fields.Failed = true
			break
		}
		if !found {
			warnings = append(warnings, p.Name()+" not found")
			if p.Required {
				fields.Failed = true
			}
			continue
		}
		fields.Succeeded++
	}

	fields.Title = c.readmeTitle
	if fields.Title == "" {
		fields.Title = c.metaTitle
	}
	if fields.Title == "" {
		fields.Title = c.firstLine
	}

	fields.Description = c.readmeDesc
	if fields.Description == "" {
		fields.Description = c.metaDesc
	}
	if fields.Description == "" {
		fields.Description = repo.Description
	}

	fields.Contributors = c.contributors
	fields.Assets = c.assets
	return &fields, warnings
}

// extractPath fetches and parses one path. found is false on a 404.
func (e *Extractor) extractPath(
	ctx context.Context, repo domain.Repository, p domain.ContentPath,
	c *collected, warnings *[]string,
) (bool, error) {
	if p.Kind == domain.KindAssets {
		entries, found, err := e.fetcher.ListDirectory(ctx, repo.ID, p.Path, repo.Branch())
		if err != nil || !found {
			return found, err
		}
		c.assets = append(c.assets, directoryAssets(entries)...)
		return true, nil
	}

	data, found, err := e.fetcher.GetFile(ctx, repo.ID, p.Path, repo.Branch())
	if err != nil || !found {
		return found, err
	}

	switch p.Kind {
	case domain.KindReadme:
		r := e.readme.Parse(data)
		if !r.HasHeading() {
			*warnings = append(*warnings, p.Name()+" has no top-level heading")
		}
		if c.readmeTitle == "" {
			c.readmeTitle = r.Title
		}
		if c.firstLine == "" {
			c.firstLine = r.FirstLine
		}
		if c.readmeDesc == "" {
			c.readmeDesc = r.Description
		}
		c.contributors = append(c.contributors, r.Contributors...)
		for _, img := range r.Images {
			c.assets = append(c.assets, domain.RawAsset{Ref: img, SourcePath: p.Path})
		}
	case domain.KindMetadata:
		m, err := parseMetadata(data)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("%s is malformed: %v", p.Name(), err))
			return true, nil
		}
		if c.metaTitle == "" {
			c.metaTitle = m.Title
		}
		if c.metaDesc == "" {
			c.metaDesc = m.Description
		}
		c.contributors = append(c.contributors, m.Contributors...)
		for _, ref := range m.Assets {
			c.assets = append(c.assets, domain.RawAsset{Ref: ref, SourcePath: p.Path})
		}
	}
	return true, nil
}

// directoryAssets returns the image files of a listing in name order.
// Paths are repository-relative.
func directoryAssets(entries []driven.DirEntry) []domain.RawAsset {
	var out []domain.RawAsset
	for _, entry := range entries {
		if entry.Type != "" && entry.Type != "file" {
			continue
		}
		if !imageExtensions[strings.ToLower(path.Ext(entry.Name))] {
			continue
		}
		out = append(out, domain.RawAsset{Ref: "/" + strings.TrimPrefix(entry.Path, "/")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}
