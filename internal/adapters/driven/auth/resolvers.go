package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// EnvResolver reads the token from process environment variables.
type EnvResolver struct {
	lookup func(string) (string, bool)
}

// NewEnvResolver creates a resolver over os.LookupEnv.
func NewEnvResolver() *EnvResolver {
	return &EnvResolver{lookup: os.LookupEnv}
}

// Name returns "environment".
func (r *EnvResolver) Name() string { return "environment" }

// Resolve returns the first non-empty token variable.
func (r *EnvResolver) Resolve(_ context.Context) (string, error) {
	for _, key := range TokenVariables {
		if v, ok := r.lookup(key); ok && v != "" {
			return v, nil
		}
	}
	return "", nil
}

// DotEnvResolver reads the token from a .env file without touching the
// process environment. A missing file is not an error.
type DotEnvResolver struct {
	path string
}

// NewDotEnvResolver creates a resolver for the file at path.
func NewDotEnvResolver(path string) *DotEnvResolver {
	return &DotEnvResolver{path: path}
}

// Name returns the file path.
func (r *DotEnvResolver) Name() string { return r.path }

// Resolve parses the file and returns the first non-empty token variable.
func (r *DotEnvResolver) Resolve(_ context.Context) (string, error) {
	values, err := godotenv.Read(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read env file: %w", err)
	}
	for _, key := range TokenVariables {
		if v := values[key]; v != "" {
			return v, nil
		}
	}
	return "", nil
}

// PromptResolver asks for the token on the terminal without echo. It
// offers nothing when stdin is not a terminal.
type PromptResolver struct {
	fd           int
	out          io.Writer
	isTerminal   func(fd int) bool
	readPassword func(fd int) ([]byte, error)
}

// NewPromptResolver creates a resolver prompting on stdin/stderr.
func NewPromptResolver() *PromptResolver {
	return &PromptResolver{
		fd:           int(os.Stdin.Fd()),
		out:          os.Stderr,
		isTerminal:   term.IsTerminal,
		readPassword: term.ReadPassword,
	}
}

// Name returns "prompt".
func (r *PromptResolver) Name() string { return "prompt" }

// Resolve prompts once. Pressing enter falls through to the next source.
func (r *PromptResolver) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.isTerminal(r.fd) {
		return "", nil
	}

	fmt.Fprint(r.out, "GitHub token (enter to use .env or environment): ")
	token, err := r.readPassword(r.fd)
	fmt.Fprintln(r.out)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(token), nil
}
