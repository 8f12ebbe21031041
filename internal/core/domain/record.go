package domain

import (
	"fmt"
	"time"
)

// RecordStatus classifies how much of a repository's expected content
// was extracted.
type RecordStatus string

const (
	// StatusComplete means every attempted fetch succeeded with no warnings.
	StatusComplete RecordStatus = "complete"

	// StatusPartial means some optional content was missing or malformed.
	StatusPartial RecordStatus = "partial"

	// StatusFailed means a required fetch failed or a fetch error
	// (rate limit, transient) stopped extraction.
	StatusFailed RecordStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s RecordStatus) Valid() bool {
	switch s {
	case StatusComplete, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// ProjectRecord is the canonical dataset entry for one repository.
// Only ID is guaranteed; every other field may be empty.
type ProjectRecord struct {
	ID            RepositoryID `json:"id"`
	FullName      string       `json:"full_name,omitempty"`
	Key           string       `json:"key,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Group         string       `json:"group,omitempty"`
	Slug          string       `json:"slug,omitempty"`
	HTMLURL       string       `json:"html_url,omitempty"`
	DefaultBranch string       `json:"default_branch,omitempty"`
	Private       bool         `json:"private"`
	CreatedAt     *time.Time   `json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `json:"updated_at,omitempty"`
	Contributors  []string     `json:"contributors"`
	Assets        []string     `json:"assets"`
	Status        RecordStatus `json:"status"`
	Warnings      []string     `json:"warnings"`
}

// Validate checks the invariants a persisted record must satisfy.
func (r *ProjectRecord) Validate() error {
	if r.ID.IsZero() {
		return fmt.Errorf("%w: record has no identifier", ErrInvalidInput)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: record %s has status %q", ErrInvalidInput, r.ID, r.Status)
	}
	return nil
}

// NeedsFollowUp reports whether the record should be reviewed by hand.
func (r *ProjectRecord) NeedsFollowUp() bool {
	return r.Status != StatusComplete || len(r.Warnings) > 0
}
