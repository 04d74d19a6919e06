package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"
	"zawawiya-store/internal/testutil"
	"zawawiya-store/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendResetCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[email] = code
	return nil
}

func (m *captureMailer) code(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[email]
	return c, ok
}

type authFixture struct {
	db     *gorm.DB
	clock  *clock.Manual
	issuer *token.Issuer
	mailer *captureMailer
	auth   AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewDB(t)
	clk := clock.NewManual(testutil.Epoch)
	issuer := token.NewIssuer("test-secret", time.Hour, clk)
	mailer := &captureMailer{}

	return &authFixture{
		db:     db,
		clock:  clk,
		issuer: issuer,
		mailer: mailer,
		auth: NewAuthService(db, zaptest.NewLogger(t), issuer, NewOTPStore(clk, 10*time.Minute), mailer,
			repository.NewUserRepository(db), repository.NewCartRepository(db)),
	}
}

func registerRequest(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		FirstName: "Ahmad",
		LastName:  "Fauzi",
		Email:     email,
		Phone:     "081298765432",
		Gender:    "male",
		Password:  "rahasia123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, registerRequest(" Ahmad@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "ahmad@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "rahasia123", user.PasswordHash)

	var carts int64
	require.NoError(t, f.db.Model(&model.Cart{}).Where("user_id = ? AND active = ?", user.ID, true).Count(&carts).Error)
	assert.Equal(t, int64(1), carts)

	_, err = f.auth.Register(ctx, registerRequest("AHMAD@example.com"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "ahmad@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	claims, err := f.issuer.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "ahmad@example.com", Password: "salah"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "rahasia123"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, registerRequest("lupa@example.com"))
	require.NoError(t, err)

	require.NoError(t, f.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "unknown@example.com"}))
	_, sent := f.mailer.code("unknown@example.com")
	assert.False(t, sent)

	require.NoError(t, f.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "Lupa@example.com"}))
	code, sent := f.mailer.code("lupa@example.com")
	require.True(t, sent)
	assert.Len(t, code, 6)

	require.NoError(t, f.auth.VerifyCode(ctx, &dto.VerifyCodeRequest{Email: "lupa@example.com", Code: code}))

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Email: "lupa@example.com", Code: wrong, NewPassword: "baru12345"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	require.NoError(t, f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Email: "lupa@example.com", Code: code, NewPassword: "baru12345"}))

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "lupa@example.com", Password: "rahasia123"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "lupa@example.com", Password: "baru12345"})
	require.NoError(t, err)

	// a code works once
	err = f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Email: "lupa@example.com", Code: code, NewPassword: "lagi12345"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))
}

func TestOTPStore(t *testing.T) {
	clk := clock.NewManual(testutil.Epoch)
	store := NewOTPStore(clk, 10*time.Minute)

	code, err := store.Issue("Siti@Example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code)

	assert.True(t, store.Verify("siti@example.com", code))
	assert.False(t, store.Verify("other@example.com", code))

	replaced, err := store.Issue("siti@example.com")
	require.NoError(t, err)
	if replaced != code {
		assert.False(t, store.Verify("siti@example.com", code))
	}

	clk.Advance(10 * time.Minute)
	assert.False(t, store.Verify("siti@example.com", replaced), "expired at ttl")

	fresh, err := store.Issue("siti@example.com")
	require.NoError(t, err)
	assert.True(t, store.Consume("siti@example.com", fresh))
	assert.False(t, store.Consume("siti@example.com", fresh))
}
