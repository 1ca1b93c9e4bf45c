// Package credentials keeps provider API keys in the database so the worker
// can run without secrets in its environment.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bonchef/internal/infra"
	"bonchef/internal/sqlinline"
)

const (
	ProviderGemini         = "gemini"
	ProviderVideoProcessor = "videoproc"
)

// Providers lists the keys the store accepts.
var Providers = []string{ProviderGemini, ProviderVideoProcessor}

var ErrUnknownProvider = errors.New("credentials: unknown provider")

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Key returns the stored key of provider, or "" when none is stored.
func (s *Store) Key(ctx context.Context, provider string) (string, error) {
	if !known(provider) {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	var key string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectProviderKey, provider).Scan(&key); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(key), nil
}

// Resolve prefers the configured key and falls back to the stored one.
func (s *Store) Resolve(ctx context.Context, provider, configured string) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		return key, nil
	}
	return s.Key(ctx, provider)
}

func (s *Store) SetKey(ctx context.Context, provider, key string) error {
	if !known(provider) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: api key is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertProviderKey, provider, key)
	return err
}

func known(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}
