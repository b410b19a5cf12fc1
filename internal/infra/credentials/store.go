// Package credentials stores third-party API tokens in the database so a
// token rotated at runtime takes effect without a redeploy. The
// environment variable, when set, always wins; the store is the fallback.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"personastudio/internal/infra"
	"personastudio/internal/sqlinline"
)

const (
	ProviderReplicate = "replicate"
)

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// ReplicateAPIToken returns the stored prediction-gateway token, or empty
// when none has been configured.
func (s *Store) ReplicateAPIToken(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderReplicate)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetReplicateAPIToken stores or rotates the gateway token.
func (s *Store) SetReplicateAPIToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("replicate api token is required")
	}
	return s.upsert(ctx, ProviderReplicate, token, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
