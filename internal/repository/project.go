package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardsmith/engine-go/internal/rules"
)

// ErrProjectNotFound is returned for lookups of unknown project ids.
var ErrProjectNotFound = errors.New("project not found")

// CardDocument is the loosely-typed persisted form of a card. Everything in
// it is untrusted; rehydration re-validates through the state constructors.
type CardDocument struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	RulesText  string         `json:"rulesText,omitempty"`
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Project is one persisted authoring project: its card pool and the
// declarative rules that become event listeners at load time.
type Project struct {
	ID          string
	Name        string
	Description string
	Cards       []CardDocument
	Rules       []rules.ListenerSpec
	OwnerUID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectRepository provides CRUD over the projects table.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a project repository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project, assigning an id and timestamps.
func (r *ProjectRepository) Create(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	cardsJSON, err := json.Marshal(p.Cards)
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}
	rulesJSON, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO projects (id, name, description, cards, rules, owner_uid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Description, cardsJSON, rulesJSON, p.OwnerUID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	return nil
}

// Get fetches a project by id.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*Project, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT id, name, description, cards, rules, owner_uid, created_at, updated_at
		FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// ListByOwner fetches all projects owned by a user, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*Project, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, name, description, cards, rules, owner_uid, created_at, updated_at
		FROM projects WHERE owner_uid = $1 ORDER BY updated_at DESC`, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("list projects for %s: %w", ownerUID, err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update rewrites a project's mutable fields and bumps updated_at.
func (r *ProjectRepository) Update(ctx context.Context, p *Project) error {
	cardsJSON, err := json.Marshal(p.Cards)
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}
	rulesJSON, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE projects
		SET name = $2, description = $3, cards = $4, rules = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.Name, p.Description, cardsJSON, rulesJSON, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrProjectNotFound)
	}
	return nil
}

// Delete removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, ErrProjectNotFound)
	}
	return nil
}

func scanProject(row pgx.Row) (*Project, error) {
	var (
		p         Project
		cardsJSON []byte
		rulesJSON []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &cardsJSON, &rulesJSON,
		&p.OwnerUID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	if len(cardsJSON) > 0 {
		if err := json.Unmarshal(cardsJSON, &p.Cards); err != nil {
			return nil, fmt.Errorf("unmarshal cards for %s: %w", p.ID, err)
		}
	}
	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &p.Rules); err != nil {
			return nil, fmt.Errorf("unmarshal rules for %s: %w", p.ID, err)
		}
	}
	return &p, nil
}
