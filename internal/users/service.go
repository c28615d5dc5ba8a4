package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/colombiang/sales-mcp/internal/shared"
)

const minPhoneDigits = 10

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetByPhone(ctx context.Context, phone string) (*User, error)
	UpdateByPhone(ctx context.Context, input UpdateByPhoneInput) (*User, error)
	Create(ctx context.Context, name, phone string, email *string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
}

// Service handles user directory business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

// NormalizePhone strips everything but digits from a phone number.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *Service) checkPhone(raw string) (string, error) {
	phone := NormalizePhone(raw)
	if len(phone) < minPhoneDigits {
		return "", shared.NewValidationError("phone",
			"must contain at least %d digits", minPhoneDigits)
	}
	return phone, nil
}

// GetByPhone looks up a user by phone; the input may carry formatting
// characters, which are stripped before lookup.
func (s *Service) GetByPhone(ctx context.Context, rawPhone string) (*User, error) {
	phone, err := s.checkPhone(rawPhone)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByPhone(ctx, phone)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("user lookup failed", slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to read user", err)
	}
	return user, nil
}

// UpdateByPhone changes a user's name and/or email, keyed by phone.
// At least one of the new values must be provided; an email is lowercased
// and syntax-checked before it is stored.
func (s *Service) UpdateByPhone(ctx context.Context, rawPhone string, newName, newEmail *string) (*User, error) {
	phone, err := s.checkPhone(rawPhone)
	if err != nil {
		return nil, err
	}
	if newName == nil && newEmail == nil {
		return nil, shared.NewValidationError("", "at least one of new_name or new_email is required")
	}
	if newName != nil {
		trimmed := strings.TrimSpace(*newName)
		if trimmed == "" {
			return nil, shared.NewValidationError("new_name", "must not be empty")
		}
		newName = &trimmed
	}
	if newEmail != nil {
		lowered := strings.ToLower(strings.TrimSpace(*newEmail))
		if err := s.validate.Var(lowered, "required,email"); err != nil {
			return nil, shared.NewValidationError("new_email", "is not a valid email address")
		}
		newEmail = &lowered
	}

	user, err := s.repo.UpdateByPhone(ctx, UpdateByPhoneInput{
		Phone: phone, NewName: newName, NewEmail: newEmail,
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("user update failed", slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to update user", err)
	}
	return user, nil
}

// Create registers a new user with a normalized phone.
func (s *Service) Create(ctx context.Context, name, rawPhone string, email *string) (*User, error) {
	phone, err := s.checkPhone(rawPhone)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "must not be empty")
	}
	if email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*email))
		if err := s.validate.Var(lowered, "required,email"); err != nil {
			return nil, shared.NewValidationError("email", "is not a valid email address")
		}
		email = &lowered
	}
	user, err := s.repo.Create(ctx, name, phone, email)
	if err != nil {
		s.logger.Error("user create failed", slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to create user", err)
	}
	return user, nil
}

// List returns users with clamped pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	limit = shared.ClampLimit(limit, 50, 200)
	offset = shared.ClampOffset(offset)
	out, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("user list failed", slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to list users", err)
	}
	return out, nil
}
