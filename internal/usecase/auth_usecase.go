package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
	"github.com/ZinoM21/any-cv-api/pkg/auth"
	"github.com/ZinoM21/any-cv-api/pkg/security"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Mailer is the slice of the email service the auth flow needs.
type Mailer interface {
	IsConfigured() bool
	SendVerificationEmail(toEmail, name, token string) error
	SendPasswordResetEmail(toEmail, name, token string) error
}

type authUsecase struct {
	users         domain.UserRepository
	tokens        *auth.TokenManager
	mailer        Mailer
	validate      *validator.Validate
	emailTokenTTL time.Duration
}

func NewAuthUsecase(
	users domain.UserRepository,
	tokens *auth.TokenManager,
	mailer Mailer,
	validate *validator.Validate,
	emailTokenTTL time.Duration,
) domain.AuthUsecase {
	return &authUsecase{
		users:         users,
		tokens:        tokens,
		mailer:        mailer,
		validate:      validate,
		emailTokenTTL: emailTokenTTL,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	existing, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Email is already registered")
	}

	existing, err = u.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		VerifyToken:    uuid.NewString(),
		VerifyTokenExp: time.Now().UTC().Add(u.emailTokenTTL),
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	if u.mailer.IsConfigured() {
		if err := u.mailer.SendVerificationEmail(user.Email, user.FirstName, user.VerifyToken); err != nil {
			// Account creation succeeded; the user can request a new link.
			slog.Error("Failed to send verification email", "error", err)
		}
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req *domain.LoginRequest, remoteIP string) (*domain.TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		security.DefaultLogger().LogLoginFailed(ctx, req.Email, remoteIP, "unknown_email")
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		security.DefaultLogger().LogLoginFailed(ctx, req.Email, remoteIP, "wrong_password")
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	access, refresh, err := u.tokens.IssuePair(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	security.DefaultLogger().LogLoginSuccess(ctx, user.ID, remoteIP)

	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := u.tokens.Parse(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	access, refresh, err := u.tokens.IssuePair(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (u *authUsecase) VerifyEmail(ctx context.Context, token string) error {
	user, err := u.users.FindByVerifyToken(ctx, token)
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return apperror.BadRequest("Invalid verification token")
	}
	if time.Now().UTC().After(user.VerifyTokenExp) {
		return apperror.BadRequest("Verification token has expired")
	}

	user.EmailVerified = true
	user.VerifyToken = ""
	user.VerifyTokenExp = time.Time{}

	if err := u.users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ForgotPassword issues a reset token when the email is known and stays
// silent otherwise, so the endpoint cannot be used to probe for accounts.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return nil
	}

	user.ResetToken = uuid.NewString()
	user.ResetTokenExp = time.Now().UTC().Add(u.emailTokenTTL)

	if err := u.users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}

	security.DefaultLogger().Log(ctx, security.SecurityEvent{
		Event:        security.EventPasswordResetRequested,
		SubjectType:  "email",
		SubjectValue: security.MaskEmail(email),
	})

	if u.mailer.IsConfigured() {
		if err := u.mailer.SendPasswordResetEmail(user.Email, user.FirstName, user.ResetToken); err != nil {
			slog.Error("Failed to send password reset email", "error", err)
		}
	}

	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperror.BadRequest("Password must be at least 8 characters")
	}

	user, err := u.users.FindByResetToken(ctx, token)
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return apperror.BadRequest("Invalid reset token")
	}
	if time.Now().UTC().After(user.ResetTokenExp) {
		return apperror.BadRequest("Reset token has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal(err)
	}

	user.PasswordHash = string(hash)
	user.ResetToken = ""
	user.ResetTokenExp = time.Time{}

	if err := u.users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
