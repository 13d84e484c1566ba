package postgres

import (
	"context"
	"testing"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contentColumnNames = []string{"section", "title", "subtitle", "body", "button_text", "image", "data", "last_updated_by", "created_at", "updated_at"}

func TestContentRepository_FindBySection(t *testing.T) {
	mock := newMock(t)
	repo := NewContentRepository(mock)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM content_sections WHERE section").
		WithArgs("hero").
		WillReturnRows(pgxmock.NewRows(contentColumnNames).
			AddRow("hero", "Welcome", "Sub", "Body", "Go", "hero.jpg", map[string]any{"k": "v"}, int64(1), now, now))

	c, err := repo.FindBySection(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", c.Title)
	assert.Equal(t, "Body", c.Text)
	assert.Equal(t, "v", c.Data["k"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_FindBySection_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewContentRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM content_sections WHERE section").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindBySection(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestContentRepository_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewContentRepository(mock)
	now := time.Now()
	title := "Welcome"

	mock.ExpectQuery("INSERT INTO content_sections").
		WithArgs("hero", &title, (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), nil, int64(3)).
		WillReturnRows(pgxmock.NewRows(contentColumnNames).
			AddRow("hero", "Welcome", "", "", "", "", map[string]any(nil), int64(3), now, now))

	c, err := repo.Upsert(context.Background(), "hero", model.UpdateContentRequest{Title: &title}, 3)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", c.Title)
	assert.Equal(t, int64(3), c.LastUpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
