package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/internal/usecase"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
	"github.com/ZinoM21/any-cv-api/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthUsecase(users *MockUserRepo, mailer *MockMailer) domain.AuthUsecase {
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	return usecase.NewAuthUsecase(users, tokens, mailer, newValidator(), 24*time.Hour)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	req := &domain.RegisterRequest{
		Email:     "jane@example.com",
		Username:  "janedoe",
		Password:  "correct-horse",
		FirstName: "Jane",
	}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepo)
		mailer := new(MockMailer)
		uc := newAuthUsecase(users, mailer)

		users.On("FindByEmail", mock.Anything, req.Email).Return(nil, nil)
		users.On("FindByUsername", mock.Anything, req.Username).Return(nil, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
		mailer.On("IsConfigured").Return(true)
		mailer.On("SendVerificationEmail", req.Email, "Jane", mock.AnythingOfType("string")).Return(nil)

		user, err := uc.Register(context.Background(), req)

		require.NoError(t, err)
		assert.NotEqual(t, req.Password, user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)))
		assert.False(t, user.EmailVerified)
		assert.NotEmpty(t, user.VerifyToken)
		assert.True(t, user.VerifyTokenExp.After(time.Now()))
		mailer.AssertCalled(t, "SendVerificationEmail", req.Email, "Jane", user.VerifyToken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		users.On("FindByEmail", mock.Anything, req.Email).Return(&domain.User{ID: "u1"}, nil)

		_, err := uc.Register(context.Background(), req)

		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid username", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		bad := *req
		bad.Username = "jane doe!"
		_, err := uc.Register(context.Background(), &bad)

		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	storedUser := &domain.User{
		ID:           "user-1",
		Email:        "jane@example.com",
		Username:     "janedoe",
		PasswordHash: "",
	}

	t.Run("success issues token pair", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		user := *storedUser
		user.PasswordHash = hashPassword(t, "correct-horse")
		users.On("FindByEmail", mock.Anything, user.Email).Return(&user, nil)

		pair, err := uc.Login(context.Background(), &domain.LoginRequest{
			Email:    user.Email,
			Password: "correct-horse",
		}, "1.2.3.4")

		require.NoError(t, err)
		tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
		claims, err := tokens.Parse(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)

		claims, err = tokens.Parse(pair.Refresh)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenTypeRefresh, claims.TokenType)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		user := *storedUser
		user.PasswordHash = hashPassword(t, "correct-horse")
		users.On("FindByEmail", mock.Anything, user.Email).Return(&user, nil)

		_, err := uc.Login(context.Background(), &domain.LoginRequest{
			Email:    user.Email,
			Password: "wrong",
		}, "1.2.3.4")

		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		_, err := uc.Login(context.Background(), &domain.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever",
		}, "1.2.3.4")

		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
		assert.Contains(t, err.Error(), "Invalid email or password")
	})
}

func TestRefresh(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	t.Run("access token is not accepted", func(t *testing.T) {
		uc := newAuthUsecase(new(MockUserRepo), new(MockMailer))

		access, err := tokens.Issue(auth.TokenTypeAccess, "user-1", "jane@example.com", "janedoe")
		require.NoError(t, err)

		_, err = uc.Refresh(context.Background(), access)
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("valid refresh rotates the pair", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		refresh, err := tokens.Issue(auth.TokenTypeRefresh, "user-1", "jane@example.com", "janedoe")
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, "user-1").
			Return(&domain.User{ID: "user-1", Email: "jane@example.com", Username: "janedoe"}, nil)

		pair, err := uc.Refresh(context.Background(), refresh)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
	})

	t.Run("deleted user is rejected", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		refresh, err := tokens.Issue(auth.TokenTypeRefresh, "user-1", "jane@example.com", "janedoe")
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, "user-1").Return(nil, nil)

		_, err = uc.Refresh(context.Background(), refresh)
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Run("marks user verified and clears token", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		user := &domain.User{
			ID:             "user-1",
			VerifyToken:    "tok",
			VerifyTokenExp: time.Now().Add(time.Hour),
		}
		users.On("FindByVerifyToken", mock.Anything, "tok").Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		err := uc.VerifyEmail(context.Background(), "tok")

		require.NoError(t, err)
		assert.True(t, user.EmailVerified)
		assert.Empty(t, user.VerifyToken)
	})

	t.Run("expired token", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		users.On("FindByVerifyToken", mock.Anything, "tok").Return(&domain.User{
			VerifyToken:    "tok",
			VerifyTokenExp: time.Now().Add(-time.Hour),
		}, nil)

		err := uc.VerifyEmail(context.Background(), "tok")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func TestForgotPassword_UnknownEmailStaysSilent(t *testing.T) {
	users := new(MockUserRepo)
	mailer := new(MockMailer)
	uc := newAuthUsecase(users, mailer)

	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	err := uc.ForgotPassword(context.Background(), "ghost@example.com")

	assert.NoError(t, err)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword(t *testing.T) {
	t.Run("success replaces hash and clears token", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		oldHash := hashPassword(t, "old-password")
		user := &domain.User{
			ID:            "user-1",
			PasswordHash:  oldHash,
			ResetToken:    "tok",
			ResetTokenExp: time.Now().Add(time.Hour),
		}
		users.On("FindByResetToken", mock.Anything, "tok").Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		err := uc.ResetPassword(context.Background(), "tok", "brand-new-password")

		require.NoError(t, err)
		assert.NotEqual(t, oldHash, user.PasswordHash)
		assert.Empty(t, user.ResetToken)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("brand-new-password")))
	})

	t.Run("short password", func(t *testing.T) {
		uc := newAuthUsecase(new(MockUserRepo), new(MockMailer))
		err := uc.ResetPassword(context.Background(), "tok", "short")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("invalid token", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := newAuthUsecase(users, new(MockMailer))

		users.On("FindByResetToken", mock.Anything, "tok").Return(nil, nil)

		err := uc.ResetPassword(context.Background(), "tok", "brand-new-password")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}
