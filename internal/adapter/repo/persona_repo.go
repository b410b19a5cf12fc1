package repo

import (
	"context"
	"fmt"
	"strings"

	"personastudio/internal/domain"
	"personastudio/internal/infra"
	"personastudio/internal/sqlinline"
)

// PersonaRepositoryPG persists persona records in PostgreSQL via the
// shared SQL runner.
type PersonaRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewPersonaRepository creates a new PersonaRepositoryPG.
func NewPersonaRepository(sql infra.SQLExecutor) *PersonaRepositoryPG {
	return &PersonaRepositoryPG{sql: sql}
}

// FindByID fetches a persona by id, mapping an empty result to
// domain.ErrNotFound.
func (r *PersonaRepositoryPG) FindByID(ctx context.Context, id string) (*domain.Persona, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	row := r.sql.QueryRow(ctx, sqlinline.QSelectPersonaByID, id)
	persona, err := scanPersona(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("persona find: %w", err)
	}
	return persona, nil
}

// List returns personas newest first. An empty ownerID lists every record;
// otherwise results are filtered to the owner.
func (r *PersonaRepositoryPG) List(ctx context.Context, ownerID string) ([]domain.Persona, error) {
	ownerID = strings.TrimSpace(ownerID)
	var (
		rows pgxRows
		err  error
	)
	if ownerID == "" {
		rows, err = r.sql.Query(ctx, sqlinline.QListPersonas)
	} else {
		rows, err = r.sql.Query(ctx, sqlinline.QListPersonasByOwner, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("persona list: %w", err)
	}
	defer rows.Close()
	var out []domain.Persona
	for rows.Next() {
		persona, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("persona list scan: %w", err)
		}
		out = append(out, *persona)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persona list rows: %w", err)
	}
	return out, nil
}

// Upsert creates the persona on first write, or merges the supplied status
// fields on subsequent writes. The owning user id is never overwritten:
// the update arm of the statement does not touch it.
func (r *PersonaRepositoryPG) Upsert(ctx context.Context, params domain.PersonaUpsert) error {
	personaID := strings.TrimSpace(params.PersonaID)
	if personaID == "" {
		return fmt.Errorf("persona upsert: %w: persona id is required", domain.ErrInvalidInput)
	}
	userID := strings.TrimSpace(params.UserID)
	if userID == "" {
		return fmt.Errorf("persona upsert: %w: user id is required", domain.ErrInvalidInput)
	}
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertPersona,
		personaID,
		userID,
		string(params.VisualStatus),
		string(params.VoiceStatus),
		params.TrainingArchive,
	)
	if err != nil {
		return fmt.Errorf("persona upsert: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

type pgxRows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

func scanPersona(row scannable) (*domain.Persona, error) {
	var p domain.Persona
	var visual, voice string
	if err := row.Scan(&p.ID, &p.UserID, &visual, &voice, &p.TrainingArchive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.VisualStatus = domain.TrainingStatus(visual)
	p.VoiceStatus = domain.TrainingStatus(voice)
	return &p, nil
}
