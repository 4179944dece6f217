package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/fleet/service"
	"github.com/xela07ax/robofleet/internal/infra"
	"github.com/xela07ax/robofleet/internal/infra/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User // keyed by username
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (r *memUserRepo) Insert(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Username] = *u
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) Taken(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newAuthFixture(t *testing.T) (*service.AuthService, *auth.BaseValidator) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	svc := service.NewAuthService(newMemUserRepo(), key,
		infra.AuthConfig{BcryptCost: bcrypt.MinCost}, zap.NewNop())
	return svc, auth.NewBaseValidator(&key.PublicKey)
}

func TestRegisterAndToken(t *testing.T) {
	ctx := context.Background()
	svc, validator := newAuthFixture(t)

	user, err := svc.Register(ctx, domain.RegisterRequest{
		Username: "operator",
		Email:    "op@example.com",
		Password: "s3cret",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	// Хеш никогда не равен исходному паролю
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	// Повторная регистрация того же username отклоняется
	_, err = svc.Register(ctx, domain.RegisterRequest{
		Username: "operator",
		Email:    "other@example.com",
		Password: "x",
	})
	assert.ErrorIs(t, err, domain.ErrUserTaken)

	// Токен выдается и проходит верификацию публичным ключом
	resp, err := svc.GenerateToken(ctx, "operator", "s3cret")
	assert.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)

	claims, err := validator.VerifyToken(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestGenerateTokenRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	svc.Register(ctx, domain.RegisterRequest{
		Username: "operator",
		Email:    "op@example.com",
		Password: "s3cret",
	})

	_, err := svc.GenerateToken(ctx, "operator", "wrong")
	assert.Error(t, err)

	_, err = svc.GenerateToken(ctx, "nobody", "s3cret")
	assert.Error(t, err)
}
