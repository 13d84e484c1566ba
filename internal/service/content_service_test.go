package service

import (
	"context"
	"testing"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_UpsertAndList(t *testing.T) {
	content := NewContentService(memory.NewStore().Content)
	ctx := context.Background()

	list, err := content.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	hero, err := content.Upsert(ctx, "hero", 1, model.UpdateContentRequest{
		Title:    strPtr("Welcome"),
		Subtitle: strPtr("Moving made easy"),
		Data:     map[string]any{"phone": "555-0100"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hero", hero.Section)
	assert.Equal(t, int64(1), hero.LastUpdatedBy)

	hero, err = content.Upsert(ctx, " hero ", 2, model.UpdateContentRequest{Title: strPtr("Hello")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", hero.Title)
	assert.Equal(t, "Moving made easy", hero.Subtitle)
	assert.Equal(t, "555-0100", hero.Data["phone"])
	assert.Equal(t, int64(2), hero.LastUpdatedBy)

	_, err = content.Upsert(ctx, "about", 1, model.UpdateContentRequest{Text: strPtr("Since 1999")})
	require.NoError(t, err)

	list, err = content.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Hello", list["hero"].Title)
	assert.Equal(t, "Since 1999", list["about"].Text)
}

func TestContent_Get(t *testing.T) {
	content := NewContentService(memory.NewStore().Content)
	ctx := context.Background()

	_, err := content.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = content.Get(ctx, "  ")
	assert.Equal(t, "Section is required", validationMessage(t, err))

	_, err = content.Upsert(ctx, "contact", 1, model.UpdateContentRequest{ButtonText: strPtr("Call us")})
	require.NoError(t, err)

	got, err := content.Get(ctx, "contact")
	require.NoError(t, err)
	assert.Equal(t, "Call us", got.ButtonText)
}
