package resource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cityservices/api/internal/store"
)

const table = "resources"

var columns = []string{"id", "name", "description", "status", "tags", "created_at", "updated_at"}

// PostgresRepository stores resources in the resources table.
type PostgresRepository struct {
	db store.DB
}

// NewPostgresRepository returns a repository querying db.
func NewPostgresRepository(db store.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the resources table and its list index if missing.
func (p *PostgresRepository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS resources (
			id          uuid PRIMARY KEY,
			name        text NOT NULL,
			description text,
			status      text NOT NULL DEFAULT 'pending'
			            CHECK (status IN ('active', 'inactive', 'pending')),
			tags        text[] NOT NULL DEFAULT '{}',
			created_at  timestamptz NOT NULL DEFAULT now(),
			updated_at  timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS resources_created_at_idx ON resources (created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate resources: %w", err)
		}
	}
	return nil
}

// List implements Repository.
func (p *PostgresRepository) List(ctx context.Context, f Filter) ([]Resource, int, error) {
	q := store.ListQuery{
		Table:        table,
		Columns:      columns,
		FilterColumn: "name",
		Filter:       f.Name,
		Page:         f.Page,
	}

	countSQL, countArgs := q.Count()
	var total int
	if err := p.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	selectSQL, selectArgs := q.Select()
	rows, err := p.db.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query resources: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanResource)
	if err != nil {
		return nil, 0, fmt.Errorf("scan resources: %w", err)
	}
	return items, total, nil
}

// Get implements Repository.
func (p *PostgresRepository) Get(ctx context.Context, id string) (Resource, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name, description, status, tags, created_at, updated_at
		FROM resources WHERE id = $1`, id)
	if err != nil {
		return Resource{}, fmt.Errorf("get resource: %w", err)
	}
	r, err := pgx.CollectExactlyOneRow(rows, scanResource)
	if err != nil {
		return Resource{}, store.NotFound(err)
	}
	return r, nil
}

// Create implements Repository.
func (p *PostgresRepository) Create(ctx context.Context, r Resource) error {
	_, err := p.db.Exec(ctx, `INSERT INTO resources (id, name, description, status, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Name, nullable(r.Description), string(r.Status), tagsOf(r), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// Update implements Repository.
func (p *PostgresRepository) Update(ctx context.Context, r Resource) error {
	tag, err := p.db.Exec(ctx, `UPDATE resources
		SET name = $2, description = $3, status = $4, tags = $5, updated_at = $6
		WHERE id = $1`,
		r.ID, r.Name, nullable(r.Description), string(r.Status), tagsOf(r), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete implements Repository.
func (p *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanResource(row pgx.CollectableRow) (Resource, error) {
	var (
		r      Resource
		desc   *string
		status string
	)
	if err := row.Scan(&r.ID, &r.Name, &desc, &status, &r.Tags, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Resource{}, err
	}
	if desc != nil {
		r.Description = *desc
	}
	r.Status = Status(status)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func tagsOf(r Resource) []string {
	if r.Tags == nil {
		return []string{}
	}
	return r.Tags
}
