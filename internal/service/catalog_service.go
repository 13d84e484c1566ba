package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
)

// CatalogService manages the services shown on the public site
type CatalogService interface {
	ListActive(ctx context.Context) ([]model.Service, error)
	Get(ctx context.Context, id int64) (*model.Service, error)
	Create(ctx context.Context, createdBy int64, req model.CreateServiceRequest) (*model.Service, error)
	Update(ctx context.Context, id int64, req model.UpdateServiceRequest) (*model.Service, error)
	Delete(ctx context.Context, id int64) error
}

type createServiceInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
}

type updateServiceInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,min=1,max=500"`
}

type catalogService struct {
	repo repository.ServiceRepository
	now  func() time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repo repository.ServiceRepository) CatalogService {
	return &catalogService{repo: repo, now: time.Now}
}

// ListActive never returns nil so the response encodes as []
func (s *catalogService) ListActive(ctx context.Context) ([]model.Service, error) {
	services, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	if services == nil {
		services = []model.Service{}
	}
	return services, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*model.Service, error) {
	service, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrServiceNotFound, "failed to get service")
	}
	return service, nil
}

func (s *catalogService) Create(ctx context.Context, createdBy int64, req model.CreateServiceRequest) (*model.Service, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	if err := validateAll(createServiceInput{Title: req.Title, Description: req.Description}); err != nil {
		return nil, err
	}

	icon := strings.TrimSpace(req.Icon)
	if icon == "" {
		icon = model.DefaultServiceIcon
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.now().UTC()
	service := &model.Service{
		Title:       req.Title,
		Description: req.Description,
		Icon:        icon,
		Category:    req.Category,
		Active:      active,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return service, nil
}

// Update applies the fields present in req
func (s *catalogService) Update(ctx context.Context, id int64, req model.UpdateServiceRequest) (*model.Service, error) {
	req.Title = trimPtr(req.Title)
	req.Description = trimPtr(req.Description)
	req.Category = trimPtr(req.Category)
	if err := validateAll(updateServiceInput{Title: req.Title, Description: req.Description}); err != nil {
		return nil, err
	}

	service, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, notFound(err, ErrServiceNotFound, "failed to update service")
	}
	return service, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, ErrServiceNotFound, "failed to delete service")
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
