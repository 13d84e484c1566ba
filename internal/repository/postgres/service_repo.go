package postgres

import (
	"context"
	"errors"
	"fmt"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/jackc/pgx/v5"
)

const serviceColumns = `id, title, description, icon, category, active, created_by, created_at, updated_at`

type serviceRepository struct {
	db DBTX
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db DBTX) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func scanService(row pgx.Row) (*model.Service, error) {
	s := &model.Service{}
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Icon, &s.Category, &s.Active,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListActive returns active services in creation order
func (r *serviceRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services WHERE active = TRUE ORDER BY id`)
}

// ListAll returns every service, inactive ones included, in creation order
func (r *serviceRepository) ListAll(ctx context.Context) ([]model.Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY id`)
}

func (r *serviceRepository) list(ctx context.Context, sql string) ([]model.Service, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	services := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		services = append(services, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service rows: %w", err)
	}
	return services, nil
}

// FindByID retrieves a service by its ID
func (r *serviceRepository) FindByID(ctx context.Context, id int64) (*model.Service, error) {
	sql := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	s, err := scanService(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return s, nil
}

// Create inserts a new service
func (r *serviceRepository) Create(ctx context.Context, s *model.Service) error {
	sql := `INSERT INTO services (title, description, icon, category, active, created_by, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRow(ctx, sql, s.Title, s.Description, s.Icon, s.Category, s.Active,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// Update modifies the set fields of an existing service
func (r *serviceRepository) Update(ctx context.Context, id int64, upd model.UpdateServiceRequest) (*model.Service, error) {
	sql := `UPDATE services
            SET title = COALESCE($1, title),
                description = COALESCE($2, description),
                icon = COALESCE($3, icon),
                category = COALESCE($4, category),
                active = COALESCE($5, active),
                updated_at = NOW()
            WHERE id = $6
            RETURNING ` + serviceColumns
	s, err := scanService(r.db.QueryRow(ctx, sql, upd.Title, upd.Description, upd.Icon, upd.Category, upd.Active, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return s, nil
}

// Delete removes a service
func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	sql := `DELETE FROM services WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
