package service

import (
	"context"
	"fmt"
	"time"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo    ports.UserRepository
	profileRepo ports.WorkerProfileRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	profileRepo ports.WorkerProfileRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a new client or worker account. Workers also get an empty
// public profile. Admin accounts are seeded out of band and cannot be
// registered here.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.User, error) {
	if req.Role != domain.RoleClient && req.Role != domain.RoleWorker {
		return nil, apperror.Validation("role must be client or worker")
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         req.Role,
		Balance:      0,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	if user.Role == domain.RoleWorker {
		profile := &domain.WorkerProfile{
			ID:        uuid.New(),
			UserID:    user.ID,
			Available: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create worker profile: %w", err))
		}
	}

	return user, nil
}

// Login validates credentials and returns a JWT token plus the account.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, *domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	if !user.Active {
		return "", time.Time{}, nil, apperror.ErrAccountSuspended()
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, user, nil
}

// GetWorkerProfile returns a worker's public profile.
func (s *AuthServiceImpl) GetWorkerProfile(ctx context.Context, userID uuid.UUID) (*domain.WorkerProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find worker profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("worker profile")
	}
	return profile, nil
}
