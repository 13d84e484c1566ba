package postgres

import (
	"context"
	"errors"
	"fmt"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/jackc/pgx/v5"
)

const contentColumns = `section, title, subtitle, body, button_text, image, data, last_updated_by, created_at, updated_at`

type contentRepository struct {
	db DBTX
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db DBTX) repository.ContentRepository {
	return &contentRepository{db: db}
}

func scanContent(row pgx.Row) (*model.Content, error) {
	c := &model.Content{}
	err := row.Scan(&c.Section, &c.Title, &c.Subtitle, &c.Text, &c.ButtonText, &c.Image, &c.Data,
		&c.LastUpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every section ordered by name
func (r *contentRepository) List(ctx context.Context) ([]model.Content, error) {
	sql := `SELECT ` + contentColumns + ` FROM content_sections ORDER BY section`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	var sections []model.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		sections = append(sections, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}
	return sections, nil
}

// FindBySection retrieves one section by name
func (r *contentRepository) FindBySection(ctx context.Context, section string) (*model.Content, error) {
	sql := `SELECT ` + contentColumns + ` FROM content_sections WHERE section = $1`
	c, err := scanContent(r.db.QueryRow(ctx, sql, section))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find content section: %w", err)
	}
	return c, nil
}

// Upsert creates the section or overwrites its set fields
func (r *contentRepository) Upsert(ctx context.Context, section string, upd model.UpdateContentRequest, updatedBy int64) (*model.Content, error) {
	sql := `INSERT INTO content_sections (section, title, subtitle, body, button_text, image, data, last_updated_by)
            VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), COALESCE($6, ''), $7, $8)
            ON CONFLICT (section) DO UPDATE SET
                title = COALESCE($2, content_sections.title),
                subtitle = COALESCE($3, content_sections.subtitle),
                body = COALESCE($4, content_sections.body),
                button_text = COALESCE($5, content_sections.button_text),
                image = COALESCE($6, content_sections.image),
                data = COALESCE($7, content_sections.data),
                last_updated_by = $8,
                updated_at = NOW()
            RETURNING ` + contentColumns
	// a typed nil map must reach the driver as SQL NULL, not JSON null
	var data any
	if upd.Data != nil {
		data = upd.Data
	}
	c, err := scanContent(r.db.QueryRow(ctx, sql, section, upd.Title, upd.Subtitle, upd.Text,
		upd.ButtonText, upd.Image, data, updatedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert content section: %w", err)
	}
	return c, nil
}
