// Package project builds canonical gallery records from extracted
// repository fields.
package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// Normaliser turns extracted fields into a ProjectRecord.
type Normaliser struct {
	prefix string
}

// New creates a normaliser. namePattern is the discovery pattern; its
// literal prefix is stripped when parsing group and slug from names.
func New(namePattern string) *Normaliser {
	prefix := namePattern
	if i := strings.IndexAny(prefix, "*?["); i >= 0 {
		prefix = prefix[:i]
	}
	return &Normaliser{prefix: prefix}
}

// Normalise builds the record for repo. Status is failed when extraction
// failed, complete when every attempted fetch succeeded with no
// warnings, and partial otherwise.
func (n *Normaliser) Normalise(
	repo domain.Repository, fields *domain.ExtractedFields, warnings []string,
) domain.ProjectRecord {
	if fields == nil {
		fields = &domain.ExtractedFields{Failed: true}
		warnings = append(warnings, "no content extracted")
	}

	record := domain.ProjectRecord{
		ID:            repo.ID,
		Title:         fields.Title,
		Description:   fields.Description,
		HTMLURL:       repo.HTMLURL,
		DefaultBranch: repo.Branch(),
		Private:       repo.Private,
		CreatedAt:     timestamp(repo.CreatedAt),
		UpdatedAt:     timestamp(repo.UpdatedAt),
		Contributors:  fields.Contributors,
		Warnings:      append([]string(nil), warnings...),
	}

	assets := make([]string, 0, len(fields.Assets))
	for _, a := range fields.Assets {
		resolved, ok := ResolveAsset(repo.ID, record.DefaultBranch, a)
		if !ok {
			record.Warnings = append(record.Warnings, "unresolvable asset reference: "+a.Ref)
			continue
		}
		assets = append(assets, resolved)
	}
	record.Assets = assets

	switch {
	case fields.Failed:
		record.Status = domain.StatusFailed
	case len(record.Warnings) == 0 && fields.Attempted == fields.Succeeded:
		record.Status = domain.StatusComplete
	default:
		record.Status = domain.StatusPartial
	}

	return n.Renormalise(record)
}

// Renormalise applies every cleanup rule to an existing record. It is
// idempotent, and Normalise output passes through it unchanged.
func (n *Normaliser) Renormalise(r domain.ProjectRecord) domain.ProjectRecord {
	if r.HTMLURL == "" {
		r.HTMLURL = RepositoryURL(r.ID)
	}
	r.HTMLURL = strings.TrimSpace(r.HTMLURL)
	if r.FullName == "" {
		r.FullName = r.ID.String()
	}
	if r.CreatedAt != nil {
		r.CreatedAt = timestamp(*r.CreatedAt)
	}
	if r.UpdatedAt != nil {
		r.UpdatedAt = timestamp(*r.UpdatedAt)
	}
	if r.Key == "" {
		r.Key = RecordKey(r.ID)
	}
	if r.Group == "" && r.Slug == "" {
		r.Group, r.Slug = ParseRepoName(r.ID.Name, n.prefix)
	}
	r.DefaultBranch = strings.TrimSpace(r.DefaultBranch)

	r.Title = collapse(r.Title)
	if r.Title == "" {
		r.Title = Humanise(r.Slug)
	}
	if r.Title == "" {
		r.Title = r.ID.Name
	}
	r.Description = strings.TrimSpace(r.Description)

	r.Contributors = cleanContributors(r.Contributors)
	r.Assets = cleanAssets(r.Assets)
	r.Warnings = dedupe(r.Warnings, strings.TrimSpace)

	if !r.Status.Valid() {
		r.Status = domain.StatusPartial
	}
	return r
}

// RecordKey returns a stable UUID for a repository.
func RecordKey(id domain.RepositoryID) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(RepositoryURL(id))).String()
}

// ParseRepoName splits "<prefix><group>_<slug>" into group and slug.
// Names without the prefix yield two empty strings; a name with only a
// group yields an empty slug.
func ParseRepoName(name, prefix string) (group, slug string) {
	if !strings.HasPrefix(name, prefix) {
		return "", ""
	}
	remainder := strings.TrimPrefix(name, prefix)
	group, slug, _ = strings.Cut(remainder, "_")
	return group, slug
}

// Humanise turns a slug like "housing-affordability_app" into
// "Housing Affordability App".
func Humanise(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.English, cases.NoLower).String(strings.Join(words, " "))
}

// timestamp returns t in UTC at second precision so it marshals as
// RFC 3339. The zero time yields nil.
func timestamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC().Truncate(time.Second)
	return &u
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanContributors strips handles' "@" and drops case-insensitive
// duplicates, keeping the first spelling.
func cleanContributors(in []string) []string {
	return dedupe(in, func(s string) string {
		return collapse(strings.TrimLeft(strings.TrimSpace(s), "@"))
	})
}

func cleanAssets(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		canonical, ok := CanonicalURL(a)
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

// dedupe cleans each string, drops empties and case-folded duplicates.
// The result is never nil.
func dedupe(in []string, clean func(string) string) []string {
	fold := cases.Fold()
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = clean(s)
		if s == "" {
			continue
		}
		key := fold.String(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
