package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/atelierhq/repairops-backend/pkg/auth"
	"github.com/atelierhq/repairops-backend/pkg/auth/session"
	"github.com/atelierhq/repairops-backend/pkg/config"
	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "repairops",
	ExpirationMinutes: 30,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type fakeUserRepo struct {
	byEmail    map[string]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		byEmail:    make(map[string]*models.User),
		lastLogins: make(map[uuid.UUID]time.Time),
	}
	for _, u := range users {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

type fakeSessionManager struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{tokens: make(map[string]string)}
}

func (f *fakeSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newID := uuid.NewString()
	newToken := uuid.NewString()
	f.tokens[newID] = newToken
	return newID, newToken, nil
}

func (f *fakeSessionManager) Revoke(_ context.Context, accessID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, accessID)
	return nil
}

func seedUser(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Role:         enums.UserRoleTechnician,
		Active:       active,
	}
}

func TestLoginIssuesCompanyScopedToken(t *testing.T) {
	t.Parallel()

	user := seedUser(t, "tech@atelier.test", "correct horse", true)
	repo := newFakeUserRepo(user)
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: newFakeSessionManager(),
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Tech@Atelier.Test ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.CompanyID, claims.CompanyID)
	assert.Equal(t, enums.UserRoleTechnician, claims.Role)

	_, recorded := repo.lastLogins[user.ID]
	assert.True(t, recorded, "last login should be recorded")
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	user := seedUser(t, "tech@atelier.test", "correct horse", true)
	svc, err := NewService(ServiceParams{
		UserRepo:  newFakeUserRepo(user),
		JWTConfig: testJWTConfig,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "tech@atelier.test",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginUnknownUserAndInactiveUserLookAlike(t *testing.T) {
	t.Parallel()

	inactive := seedUser(t, "gone@atelier.test", "pw123456", false)
	svc, err := NewService(ServiceParams{
		UserRepo:  newFakeUserRepo(inactive),
		JWTConfig: testJWTConfig,
	})
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@atelier.test",
		Password: "pw123456",
	})
	require.Error(t, unknownErr)

	_, inactiveErr := svc.Login(context.Background(), LoginRequest{
		Email:    "gone@atelier.test",
		Password: "pw123456",
	})
	require.Error(t, inactiveErr)

	// Same message either way so the endpoint does not leak which accounts exist.
	assert.Equal(t, unknownErr.Error(), inactiveErr.Error())
}

func TestLoginWithoutSessionStoreOmitsRefreshToken(t *testing.T) {
	t.Parallel()

	user := seedUser(t, "tech@atelier.test", "correct horse", true)
	svc, err := NewService(ServiceParams{
		UserRepo:  newFakeUserRepo(user),
		JWTConfig: testJWTConfig,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "tech@atelier.test",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
}

func TestRefreshRotatesTokens(t *testing.T) {
	t.Parallel()

	user := seedUser(t, "tech@atelier.test", "correct horse", true)
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       newFakeUserRepo(user),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Email: "tech@atelier.test", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.CompanyID, claims.CompanyID)

	// The old pair no longer rotates.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshWithForeignToken(t *testing.T) {
	t.Parallel()

	user := seedUser(t, "tech@atelier.test", "correct horse", true)
	svc, err := NewService(ServiceParams{
		UserRepo:       newFakeUserRepo(user),
		SessionManager: newFakeSessionManager(),
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Email: "tech@atelier.test", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	user := seedUser(t, "tech@atelier.test", "correct horse", true)
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       newFakeUserRepo(user),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Email: "tech@atelier.test", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims.ID))

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
}

func TestLoginBlankEmail(t *testing.T) {
	t.Parallel()

	svc, err := NewService(ServiceParams{
		UserRepo:  newFakeUserRepo(),
		JWTConfig: testJWTConfig,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: strings.Repeat(" ", 3), Password: "x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}
