// Package user handles registration, profiles and password login.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"puntomoda/internal/domain"
	userrepo "puntomoda/internal/repository/user"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when email/password do not match.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, in userrepo.UpdateInput) (*domain.User, error)
}

type tokenIssuer interface {
	Issue(ctx context.Context, userID string) (string, *domain.Session, error)
	Revoke(ctx context.Context, sessionID string) error
}

type Service struct {
	repo        userRepo
	tokens      tokenIssuer
	validate    *validator.Validate
	passwordMin int
	hashCost    int
	logger      *zap.Logger
}

func New(repo userRepo, tokens tokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		tokens:      tokens,
		validate:    validator.New(),
		passwordMin: 8,
		hashCost:    bcrypt.DefaultCost,
		logger:      logger.Named("user_service"),
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user together with an empty cart.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalidf("name is required")
	}
	email, err := s.normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, domain.User{Name: name, Email: email, PasswordHash: string(hashed)})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("email %s is already registered: %w", email, domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalidf("user id is required")
	}
	return s.repo.GetByID(ctx, id)
}

type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Update changes name and/or email. Fields left nil are kept.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	var out userrepo.UpdateInput
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalidf("name must not be empty")
		}
		out.Name = &name
	}
	if in.Email != nil {
		email, err := s.normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		out.Email = &email
	}
	u, err := s.repo.Update(ctx, id, out)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("email is already registered: %w", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, *domain.Session, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", nil, ErrInvalidCredentials
		}
		return nil, "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", u.ID))
		return nil, "", nil, ErrInvalidCredentials
	}
	token, sess, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("issue session: %w", err)
	}
	return u, token, sess, nil
}

func (s *Service) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return domain.ErrUnauthorized
	}
	return s.tokens.Revoke(ctx, sess.ID)
}

func (s *Service) normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.Invalidf("email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return "", domain.Invalidf("email %q is not valid", raw)
	}
	return email, nil
}

// passwordMaxBytes is the longest input bcrypt accepts.
const passwordMaxBytes = 72

func validatePassword(p string, min int) error {
	if len(strings.TrimSpace(p)) < min {
		return domain.Invalidf("password must be at least %d characters", min)
	}
	if len(p) > passwordMaxBytes {
		return domain.Invalidf("password must be at most %d bytes", passwordMaxBytes)
	}
	return nil
}
