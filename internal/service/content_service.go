package service

import (
	"context"
	"fmt"
	"strings"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
)

// ContentService manages the editable sections of the public site
type ContentService interface {
	List(ctx context.Context) (map[string]model.Content, error)
	Get(ctx context.Context, section string) (*model.Content, error)
	Upsert(ctx context.Context, section string, updatedBy int64, req model.UpdateContentRequest) (*model.Content, error)
}

type sectionInput struct {
	Section string `json:"section" validate:"required,max=100"`
}

type contentService struct {
	repo repository.ContentRepository
}

// NewContentService creates a new ContentService
func NewContentService(repo repository.ContentRepository) ContentService {
	return &contentService{repo: repo}
}

// List returns every section keyed by its name
func (s *contentService) List(ctx context.Context) (map[string]model.Content, error) {
	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	out := make(map[string]model.Content, len(sections))
	for _, c := range sections {
		out[c.Section] = c
	}
	return out, nil
}

func (s *contentService) Get(ctx context.Context, section string) (*model.Content, error) {
	section = strings.TrimSpace(section)
	if err := validateFirst(sectionInput{Section: section}); err != nil {
		return nil, err
	}
	content, err := s.repo.FindBySection(ctx, section)
	if err != nil {
		return nil, notFound(err, ErrSectionNotFound, "failed to get content section")
	}
	return content, nil
}

// Upsert creates the section if missing, otherwise overwrites the fields in req
func (s *contentService) Upsert(ctx context.Context, section string, updatedBy int64, req model.UpdateContentRequest) (*model.Content, error) {
	section = strings.TrimSpace(section)
	if err := validateFirst(sectionInput{Section: section}); err != nil {
		return nil, err
	}
	content, err := s.repo.Upsert(ctx, section, req, updatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	return content, nil
}
