// Package auth resolves the GitHub token from an ordered list of
// credential sources.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/logger"
)

// TokenVariables are the variable names checked, in order, within each
// source.
var TokenVariables = []string{"GITHUB_TOKEN", "GITHUB_PAT"}

// Resolver is one credential source. An empty token with a nil error
// means the source has nothing to offer.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context) (string, error)
}

// Ensure ChainProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ChainProvider)(nil)

// ChainProvider asks each resolver in turn and uses the first non-empty
// token. The result is resolved once and cached.
type ChainProvider struct {
	resolvers []Resolver

	mu       sync.Mutex
	resolved bool
	token    string
	source   string
	err      error
}

// NewChain creates a provider over resolvers in priority order.
func NewChain(resolvers ...Resolver) *ChainProvider {
	return &ChainProvider{resolvers: resolvers}
}

// DefaultChain returns the standard order: interactive prompt (when
// enabled and stdin is a terminal), the .env file, then the environment.
func DefaultChain(envFile string, prompt bool) *ChainProvider {
	var resolvers []Resolver
	if prompt {
		resolvers = append(resolvers, NewPromptResolver())
	}
	if envFile != "" {
		resolvers = append(resolvers, NewDotEnvResolver(envFile))
	}
	resolvers = append(resolvers, NewEnvResolver())
	return NewChain(resolvers...)
}

// GetToken returns the token, or an error wrapping domain.ErrAuthRequired
// when no source produced one.
func (p *ChainProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.resolved {
		p.token, p.source, p.err = p.resolve(ctx)
		p.resolved = true
	}
	return p.token, p.err
}

func (p *ChainProvider) resolve(ctx context.Context) (string, string, error) {
	var tried []string
	for _, r := range p.resolvers {
		token, err := r.Resolve(ctx)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", r.Name(), err)
		}
		if token = strings.TrimSpace(token); token != "" {
			logger.Debug("[auth] using token from %s", r.Name())
			return token, r.Name(), nil
		}
		tried = append(tried, r.Name())
	}
	return "", "", fmt.Errorf("%w: no token from %s (set %s)",
		domain.ErrAuthRequired, strings.Join(tried, ", "), strings.Join(TokenVariables, " or "))
}

// Source returns the name of the resolver that produced the token.
func (p *ChainProvider) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// IsAuthenticated resolves the token if needed and reports whether one
// was found.
func (p *ChainProvider) IsAuthenticated() bool {
	token, err := p.GetToken(context.Background())
	return err == nil && token != ""
}
