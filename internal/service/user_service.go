package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/platform/logger"
	"github.com/openkanban/board-api/internal/service/auth"
	"github.com/openkanban/board-api/internal/store"
)

// UserService provides account registration, login, and lookup.
type UserService interface {
	// Register creates a new account and returns it with a signed token.
	// Returns store.ErrEmailExists when the email is already registered.
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)

	// Login verifies credentials and returns the account with a signed
	// token. Returns auth.ErrInvalidCredentials on unknown email or wrong
	// password without revealing which.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// GetByID returns the account for the given ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// List returns the public summaries of all accounts, for assignment
	// pickers.
	List(ctx context.Context) ([]domain.UserSummary, error)
}

// userServiceImpl implements UserService.
type userServiceImpl struct {
	userStore  store.UserStore
	hasher     auth.PasswordHasher
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	jwtService auth.JWTService,
	log *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if jwtService == nil {
		return nil, domain.NewValidationError("jwtService", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}
	return &userServiceImpl{
		userStore:  userStore,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     log.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register.
func (s *userServiceImpl) Register(
	ctx context.Context,
	name, email, password string,
) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email)
	if err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}
	user.HashedPassword = hash

	if err := s.userStore.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			return nil, "", err
		}
		return nil, "", NewUserServiceError("register", "failed to save user", err)
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", NewUserServiceError("register", "failed to issue token", err)
	}

	log.Info("user registered",
		"user_id", user.ID,
		"email", user.Email)

	return user, token, nil
}

// Login implements UserService.Login.
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Same answer as a wrong password.
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", NewUserServiceError("login", "failed to load user", err)
	}

	if err := s.hasher.Verify(password, user.HashedPassword); err != nil {
		log.Debug("login rejected", "email", email)
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", NewUserServiceError("login", "failed to issue token", err)
	}

	log.Info("user logged in", "user_id", user.ID)

	return user, token, nil
}

// GetByID implements UserService.GetByID.
func (s *userServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewUserServiceError("get", "failed to load user", err)
	}
	return user, nil
}

// List implements UserService.List.
func (s *userServiceImpl) List(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, NewUserServiceError("list", "failed to load users", err)
	}
	return users, nil
}
