package patrol

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cityservices/api/internal/store"
)

var columns = []string{
	"id", "case_id", "location", "started_at", "ended_at",
	"patrol_type", "call_type", "created_at", "updated_at",
}

// PostgresRepository stores patrols in the patrols table.
type PostgresRepository struct {
	db store.DB
}

// NewPostgresRepository returns a repository querying db.
func NewPostgresRepository(db store.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the patrols table and its indexes if missing.
func (p *PostgresRepository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS patrols (
			id          uuid PRIMARY KEY,
			case_id     text,
			location    text NOT NULL,
			started_at  timestamptz NOT NULL,
			ended_at    timestamptz,
			patrol_type text NOT NULL CHECK (patrol_type IN ('car', 'foot', 'bike', 'horse')),
			call_type   text,
			created_at  timestamptz NOT NULL DEFAULT now(),
			updated_at  timestamptz NOT NULL DEFAULT now(),
			CHECK (ended_at IS NULL OR ended_at >= started_at)
		)`,
		`CREATE INDEX IF NOT EXISTS patrols_created_at_idx ON patrols (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS patrols_case_id_idx ON patrols (case_id) WHERE case_id IS NOT NULL`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate patrols: %w", err)
		}
	}
	return nil
}

// List implements Repository.
func (p *PostgresRepository) List(ctx context.Context, f Filter) ([]Patrol, int, error) {
	q := store.ListQuery{
		Table:        "patrols",
		Columns:      columns,
		FilterColumn: "location",
		Filter:       f.Location,
		Page:         f.Page,
	}

	countSQL, countArgs := q.Count()
	var total int
	if err := p.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patrols: %w", err)
	}

	selectSQL, selectArgs := q.Select()
	rows, err := p.db.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query patrols: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanPatrol)
	if err != nil {
		return nil, 0, fmt.Errorf("scan patrols: %w", err)
	}
	return items, total, nil
}

// Get implements Repository.
func (p *PostgresRepository) Get(ctx context.Context, id string) (Patrol, error) {
	rows, err := p.db.Query(ctx, `SELECT id, case_id, location, started_at, ended_at,
		patrol_type, call_type, created_at, updated_at
		FROM patrols WHERE id = $1`, id)
	if err != nil {
		return Patrol{}, fmt.Errorf("get patrol: %w", err)
	}
	pt, err := pgx.CollectExactlyOneRow(rows, scanPatrol)
	if err != nil {
		return Patrol{}, store.NotFound(err)
	}
	return pt, nil
}

// Create implements Repository.
func (p *PostgresRepository) Create(ctx context.Context, pt Patrol) error {
	_, err := p.db.Exec(ctx, `INSERT INTO patrols
		(id, case_id, location, started_at, ended_at, patrol_type, call_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pt.ID, nullable(pt.CaseID), pt.Location, pt.StartedAt, pt.EndedAt,
		string(pt.PatrolType), nullable(pt.CallType), pt.CreatedAt, pt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert patrol: %w", err)
	}
	return nil
}

// Update implements Repository.
func (p *PostgresRepository) Update(ctx context.Context, pt Patrol) error {
	tag, err := p.db.Exec(ctx, `UPDATE patrols
		SET case_id = $2, location = $3, started_at = $4, ended_at = $5,
		    patrol_type = $6, call_type = $7, updated_at = $8
		WHERE id = $1`,
		pt.ID, nullable(pt.CaseID), pt.Location, pt.StartedAt, pt.EndedAt,
		string(pt.PatrolType), nullable(pt.CallType), pt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update patrol: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete implements Repository.
func (p *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM patrols WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patrol: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanPatrol(row pgx.CollectableRow) (Patrol, error) {
	var (
		pt               Patrol
		caseID, callType *string
		patrolType       string
	)
	err := row.Scan(&pt.ID, &caseID, &pt.Location, &pt.StartedAt, &pt.EndedAt,
		&patrolType, &callType, &pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		return Patrol{}, err
	}

	if caseID != nil {
		pt.CaseID = *caseID
	}
	if callType != nil {
		pt.CallType = *callType
	}
	pt.PatrolType = Type(patrolType)
	pt.StartedAt = pt.StartedAt.UTC()
	pt.EndedAt = utc(pt.EndedAt)
	pt.CreatedAt = pt.CreatedAt.UTC()
	pt.UpdatedAt = pt.UpdatedAt.UTC()
	return pt, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

