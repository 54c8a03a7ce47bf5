package service

import (
	"context"
	"testing"
	"time"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc         *AuthServiceImpl
	userRepo    *mocks.MockUserRepository
	profileRepo *mocks.MockWorkerProfileRepository
	hashSvc     *mocks.MockHashService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo:    mocks.NewMockUserRepository(ctrl),
		profileRepo: mocks.NewMockWorkerProfileRepository(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.profileRepo, d.hashSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register_Client(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{
		Username: "siti",
		Email:    "siti@example.com",
		Password: "rahasia123",
		FullName: "Siti Aminah",
		Role:     domain.RoleClient,
	}

	d.userRepo.EXPECT().GetByUsername(ctx, "siti").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("rahasia123").Return("$argon2id$hash", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	// No profile for clients

	user, err := d.svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, user.Role)
	assert.Equal(t, int64(0), user.Balance)
	assert.True(t, user.Active)
}

func TestAuthService_Register_WorkerGetsProfile(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{
		Username: "budi",
		Password: "rahasia123",
		FullName: "Budi Santoso",
		Role:     domain.RoleWorker,
	}

	d.userRepo.EXPECT().GetByUsername(ctx, "budi").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("rahasia123").Return("$argon2id$hash", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.profileRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, profile *domain.WorkerProfile) error {
			assert.True(t, profile.Available)
			assert.Equal(t, int64(0), profile.RatingCount)
			return nil
		})

	user, err := d.svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, user.Role)
}

func TestAuthService_Register_AdminRefused(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	user, err := d.svc.Register(context.Background(), ports.RegisterRequest{
		Username: "root", Password: "x", Role: domain.RoleAdmin,
	})
	assert.Nil(t, user)
	assertAppError(t, err, "VAL_001")
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "siti").Return(&domain.User{ID: uuid.New()}, nil)

	user, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "siti", Password: "x", Role: domain.RoleClient,
	})
	assert.Nil(t, user)
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	expiry := time.Now().Add(24 * time.Hour)

	d.userRepo.EXPECT().GetByUsername(ctx, "siti").Return(&domain.User{
		ID: userID, Username: "siti", PasswordHash: "$argon2id$hash",
		Role: domain.RoleClient, Active: true,
	}, nil)
	d.hashSvc.EXPECT().Verify("rahasia123", "$argon2id$hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(userID, domain.RoleClient).Return("jwt-token", expiry, nil)

	token, expiresAt, user, err := d.svc.Login(ctx, "siti", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, expiresAt)
	assert.Equal(t, userID, user.ID)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, _, user, err := d.svc.Login(ctx, "ghost", "pw")
	assert.Nil(t, user)
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "siti").Return(&domain.User{
		ID: uuid.New(), PasswordHash: "$argon2id$hash", Active: true,
	}, nil)
	d.hashSvc.EXPECT().Verify("wrong", "$argon2id$hash").Return(false, nil)

	_, _, user, err := d.svc.Login(ctx, "siti", "wrong")
	assert.Nil(t, user)
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_Suspended(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "siti").Return(&domain.User{
		ID: uuid.New(), PasswordHash: "$argon2id$hash", Active: false,
	}, nil)
	d.hashSvc.EXPECT().Verify("rahasia123", "$argon2id$hash").Return(true, nil)

	_, _, user, err := d.svc.Login(ctx, "siti", "rahasia123")
	assert.Nil(t, user)
	assertAppError(t, err, "AUTH_005")
}

func TestAuthService_GetWorkerProfile(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	workerID := uuid.New()
	profile := &domain.WorkerProfile{
		ID:            uuid.New(),
		UserID:        workerID,
		RatingAverage: 4.5,
		RatingCount:   2,
		CompletedJobs: 2,
	}

	d.profileRepo.EXPECT().GetByUserID(ctx, workerID).Return(profile, nil)

	got, err := d.svc.GetWorkerProfile(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, workerID, got.UserID)
	assert.Equal(t, 4.5, got.RatingAverage)
}

func TestAuthService_GetWorkerProfile_NotFound(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	workerID := uuid.New()

	d.profileRepo.EXPECT().GetByUserID(ctx, workerID).Return(nil, nil)

	_, err := d.svc.GetWorkerProfile(ctx, workerID)
	assertAppError(t, err, "RES_001")
}
