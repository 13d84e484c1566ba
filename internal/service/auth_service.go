package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"movexa_cms/internal/metrics"
	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/utils"

	"github.com/sirupsen/logrus"
)

// AdminStatus reports what EnsureAdmin did
type AdminStatus string

const (
	AdminCreated AdminStatus = "created"
	AdminReset   AdminStatus = "reset"
	AdminExists  AdminStatus = "exists"
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	Verify(token string) (*utils.JWTClaims, error)
	EnsureAdmin(ctx context.Context, username, email, password string, reset bool) (AdminStatus, error)
}

type registerInput struct {
	Username string `json:"username" validate:"min=3"`
	Password string `json:"password" validate:"min=6,bcryptlen"`
	Email    string `json:"email" validate:"emailfmt"`
}

type authService struct {
	userRepo repository.UserRepository
	hasher   utils.PasswordHasher
	jwtUtil  *utils.JWTUtil
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthOption configures an AuthService
type AuthOption func(*authService)

// WithMetrics records login and registration outcomes on m
func WithMetrics(m *metrics.Metrics) AuthOption {
	return func(s *authService) {
		s.metrics = m
	}
}

// WithNow replaces time.Now for timestamps
func WithNow(now func() time.Time) AuthOption {
	return func(s *authService) {
		s.now = now
	}
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, hasher utils.PasswordHasher, jwtUtil *utils.JWTUtil, log logrus.FieldLogger, opts ...AuthOption) AuthService {
	s := &authService{
		userRepo: userRepo,
		hasher:   hasher,
		jwtUtil:  jwtUtil,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an editor account. No token is issued.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	in := registerInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Email:    normalizeEmail(req.Email),
	}
	if err := validateFirst(in); err != nil {
		s.metrics.RecordAuth("register", "invalid")
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		Role:         model.RoleEditor,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.metrics.RecordAuth("register", "duplicate")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordAuth("register", "success")
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, nil
}

// Login authenticates a user, stamps lastLogin and returns a token
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", newValidationError("Username and password are required")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		// compare anyway so unknown usernames cost the same as wrong passwords
		s.hasher.Verify(password, s.dummy())
		s.metrics.RecordAuth("login", "failure")
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by username: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordAuth("login", "failure")
		return nil, "", ErrInvalidCredentials
	}

	now := s.now().UTC()
	user, err = s.userRepo.Update(ctx, user.ID, repository.UserUpdate{LastLogin: &now})
	if err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.metrics.RecordAuth("login", "success")
	return user, token, nil
}

// Verify decodes a token. It trusts the claims and does not consult the store.
func (s *authService) Verify(token string) (*utils.JWTClaims, error) {
	return s.jwtUtil.ValidateToken(token)
}

// defaultAdminDomain completes the admin email when none is configured
const defaultAdminDomain = "localhost.localdomain"

// EnsureAdmin creates the admin account if it does not exist. With reset an
// existing account gets password as its new password.
func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string, reset bool) (AdminStatus, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if email == "" {
		email = username + "@" + defaultAdminDomain
	}
	if err := validateFirst(registerInput{Username: username, Password: password, Email: email}); err != nil {
		return "", err
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if !reset {
			return AdminExists, nil
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.userRepo.SetPasswordHash(ctx, existing.ID, hash); err != nil {
			return "", fmt.Errorf("failed to reset admin password: %w", err)
		}
		s.log.WithField("username", username).Warn("admin password reset")
		return AdminReset, nil
	case !errors.Is(err, repository.ErrNotFound):
		return "", fmt.Errorf("error finding admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now().UTC()
	admin := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": admin.ID, "username": username}).Info("admin account created")
	return AdminCreated, nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.WithError(err).Error("failed to prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
