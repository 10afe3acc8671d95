// Package secrets turns a password source descriptor from the config into the
// database password.
//
// Supported descriptors:
//
//	env:VAR_NAME            environment variable
//	op://vault/item/field   1Password CLI (op read)
//	store:NAME              local obfuscated store (mm2ledger secret set)
//	keychain:service        macOS Keychain (not implemented)
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jask/mm2ledger/internal/command"
)

var (
	ErrMissingSecret    = errors.New("missing secret")
	ErrSecretReadFailed = errors.New("secret read failed")
	ErrInvalidSource    = errors.New("invalid password source")
	ErrNotImplemented   = errors.New("not implemented")
)

const (
	envPrefix      = "env:"
	opPrefix       = "op://"
	storePrefix    = "store:"
	keychainPrefix = "keychain:"
)

// Resolver resolves password source descriptors.
type Resolver struct {
	Runner command.Runner
	Store  *Store
}

func NewResolver(r command.Runner, s *Store) *Resolver {
	return &Resolver{Runner: r, Store: s}
}

func (r *Resolver) Resolve(ctx context.Context, source string) (string, error) {
	switch {
	case strings.HasPrefix(source, envPrefix):
		return fromEnv(strings.TrimPrefix(source, envPrefix))
	case strings.HasPrefix(source, opPrefix):
		return r.fromOnePassword(ctx, source)
	case strings.HasPrefix(source, storePrefix):
		if r.Store == nil {
			return "", fmt.Errorf("%w: no secret store configured", ErrMissingSecret)
		}
		return r.Store.Get(strings.TrimPrefix(source, storePrefix))
	case strings.HasPrefix(source, keychainPrefix):
		return "", fmt.Errorf("%w: macOS Keychain support is not yet implemented.\nUse env: or op:// password sources instead", ErrNotImplemented)
	default:
		return "", fmt.Errorf("%w: %q\nSupported formats:\n"+
			"  env:VAR_NAME           - environment variable\n"+
			"  op://vault/item/field  - 1Password CLI\n"+
			"  store:NAME             - local store (mm2ledger secret set NAME)\n"+
			"  keychain:service       - macOS Keychain (future)", ErrInvalidSource, source)
	}
}

func fromEnv(name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: environment variable %s is not set.\nSet it with: export %s='your-password'", ErrMissingSecret, name, name)
}

func (r *Resolver) fromOnePassword(ctx context.Context, ref string) (string, error) {
	res, err := r.Runner.Run(ctx, "op", []string{"read", ref}, nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: failed to read from 1Password: %s", ErrSecretReadFailed, res.Diagnostic())
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}
