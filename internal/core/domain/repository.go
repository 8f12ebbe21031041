package domain

import (
	"fmt"
	"strings"
	"time"
)

// RepositoryID identifies a repository within an organisation.
// It is the unique key for all downstream lookups.
type RepositoryID struct {
	Organization string `json:"organization"`
	Name         string `json:"name"`
}

// String returns the "org/name" form.
func (id RepositoryID) String() string {
	return id.Organization + "/" + id.Name
}

// IsZero reports whether either half of the identifier is missing.
func (id RepositoryID) IsZero() bool {
	return id.Organization == "" || id.Name == ""
}

// ParseRepositoryID parses an "org/name" string.
func ParseRepositoryID(s string) (RepositoryID, error) {
	org, name, ok := strings.Cut(s, "/")
	if !ok || org == "" || name == "" || strings.Contains(name, "/") {
		return RepositoryID{}, fmt.Errorf("%w: repository id %q", ErrInvalidInput, s)
	}
	return RepositoryID{Organization: org, Name: name}, nil
}

// Repository is a discovered repository together with the metadata the
// organisation listing returns alongside it.
type Repository struct {
	ID            RepositoryID
	Description   string
	DefaultBranch string
	HTMLURL       string
	Private       bool
	Archived      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Branch returns the default branch, falling back to "main".
func (r Repository) Branch() string {
	if r.DefaultBranch == "" {
		return "main"
	}
	return r.DefaultBranch
}
