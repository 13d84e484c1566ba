// Package importer copies a JSON file dataset into another storage backend.
// Records already present in the target are skipped, so an import can be
// repeated safely.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/repository/memory"

	"github.com/sirupsen/logrus"
)

// Counts tallies one record kind
type Counts struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Report summarizes an import run
type Report struct {
	Users    Counts `json:"users"`
	Services Counts `json:"services"`
	Content  Counts `json:"content"`
}

// Importer writes snapshots into dst
type Importer struct {
	dst *repository.Store
	log logrus.FieldLogger
	now func() time.Time
}

// New creates an Importer targeting dst
func New(dst *repository.Store, log logrus.FieldLogger) *Importer {
	return &Importer{dst: dst, log: log, now: time.Now}
}

// Run imports users, then services, then content sections.
//
// Users are matched by username and keep their password hashes. Services are
// matched by title and are owned by the first admin account, falling back to
// the mapped creator when there is no admin. Sections are matched by name.
func (im *Importer) Run(ctx context.Context, snap memory.Snapshot) (Report, error) {
	var report Report

	ids, owner, err := im.importUsers(ctx, snap.Users, &report.Users)
	if err != nil {
		return report, err
	}
	if err := im.importServices(ctx, snap.Services, ids, owner, &report.Services); err != nil {
		return report, err
	}
	if err := im.importContent(ctx, snap.Content, ids, &report.Content); err != nil {
		return report, err
	}

	im.log.WithFields(logrus.Fields{
		"users_imported":    report.Users.Imported,
		"users_skipped":     report.Users.Skipped,
		"services_imported": report.Services.Imported,
		"services_skipped":  report.Services.Skipped,
		"content_imported":  report.Content.Imported,
		"content_skipped":   report.Content.Skipped,
	}).Info("import finished")
	return report, nil
}

// importUsers returns the source to target id mapping and the target id of
// the first admin, or 0
func (im *Importer) importUsers(ctx context.Context, users []model.User, counts *Counts) (map[int64]int64, int64, error) {
	ids := make(map[int64]int64, len(users))
	var owner int64

	for _, u := range users {
		log := im.log.WithField("username", u.Username)

		existing, err := im.dst.Users.FindByUsername(ctx, u.Username)
		switch {
		case err == nil:
			ids[u.ID] = existing.ID
			if owner == 0 && existing.Role == model.RoleAdmin {
				owner = existing.ID
			}
			counts.Skipped++
			log.Debug("user already exists")
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return nil, 0, fmt.Errorf("error finding user %q: %w", u.Username, err)
		}

		user := u
		user.ID = 0
		if user.LastLogin.IsZero() {
			user.LastLogin = im.now().UTC()
		}
		if err := im.dst.Users.Create(ctx, &user); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				counts.Skipped++
				log.WithError(err).Warn("user conflicts with an existing account")
				continue
			}
			return nil, 0, fmt.Errorf("failed to import user %q: %w", u.Username, err)
		}
		ids[u.ID] = user.ID
		if owner == 0 && user.Role == model.RoleAdmin {
			owner = user.ID
		}
		counts.Imported++
		log.Debug("user imported")
	}
	return ids, owner, nil
}

func (im *Importer) importServices(ctx context.Context, services []model.Service, ids map[int64]int64, owner int64, counts *Counts) error {
	existing, err := im.dst.Services.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}
	titles := make(map[string]struct{}, len(existing)+len(services))
	for _, s := range existing {
		titles[s.Title] = struct{}{}
	}

	for _, s := range services {
		if _, dup := titles[s.Title]; dup {
			counts.Skipped++
			im.log.WithField("title", s.Title).Debug("service already exists")
			continue
		}

		service := s
		service.ID = 0
		service.CreatedBy = owner
		if owner == 0 {
			service.CreatedBy = ids[s.CreatedBy]
		}
		if service.Icon == "" {
			service.Icon = model.DefaultServiceIcon
		}
		if service.CreatedAt.IsZero() {
			service.CreatedAt = im.now().UTC()
			service.UpdatedAt = service.CreatedAt
		}
		if err := im.dst.Services.Create(ctx, &service); err != nil {
			return fmt.Errorf("failed to import service %q: %w", s.Title, err)
		}
		titles[s.Title] = struct{}{}
		counts.Imported++
	}
	return nil
}

func (im *Importer) importContent(ctx context.Context, sections []model.Content, ids map[int64]int64, counts *Counts) error {
	for _, c := range sections {
		_, err := im.dst.Content.FindBySection(ctx, c.Section)
		switch {
		case err == nil:
			counts.Skipped++
			im.log.WithField("section", c.Section).Debug("section already exists")
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("error finding section %q: %w", c.Section, err)
		}

		upd := model.UpdateContentRequest{
			Title:      &c.Title,
			Subtitle:   &c.Subtitle,
			Text:       &c.Text,
			ButtonText: &c.ButtonText,
			Image:      &c.Image,
			Data:       c.Data,
		}
		if _, err := im.dst.Content.Upsert(ctx, c.Section, upd, ids[c.LastUpdatedBy]); err != nil {
			return fmt.Errorf("failed to import section %q: %w", c.Section, err)
		}
		counts.Imported++
	}
	return nil
}
