package postgres

import (
	"context"
	"errors"
	"fmt"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at, last_login`

var userConstraints = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLogin)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func wrapUserErr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if field, ok := duplicateField(err, userConstraints); ok {
		return &repository.DuplicateKeyError{Field: field}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (username, email, password_hash, role, created_at, updated_at, last_login)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRow(ctx, sql, user.Username, user.Email, user.PasswordHash, user.Role,
		user.CreatedAt, user.UpdatedAt, user.LastLogin).Scan(&user.ID)
	if err != nil {
		return wrapUserErr(err, "create user")
	}
	return nil
}

// FindByUsername retrieves a user by their username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, username))
	if err != nil {
		return nil, wrapUserErr(err, "find user by username")
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, wrapUserErr(err, "find user by ID")
	}
	return user, nil
}

// Update changes the set fields in a single statement so the unique
// constraints are checked by the database.
func (r *userRepository) Update(ctx context.Context, id int64, upd repository.UserUpdate) (*model.User, error) {
	sql := `UPDATE users
            SET username = COALESCE($1, username),
                email = COALESCE($2, email),
                last_login = COALESCE($3, last_login),
                updated_at = NOW()
            WHERE id = $4
            RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, sql, upd.Username, upd.Email, upd.LastLogin, id))
	if err != nil {
		return nil, wrapUserErr(err, "update user")
	}
	return user, nil
}

// SetPasswordHash replaces the stored password hash
func (r *userRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	sql := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	cmdTag, err := r.db.Exec(ctx, sql, hash, id)
	if err != nil {
		return fmt.Errorf("failed to set password hash: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
