package domain

import (
	"context"
	"time"
)

type User struct {
	ID            string    `json:"id" bson:"_id"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	PasswordHash  string    `json:"-" bson:"pwHash"`
	FirstName     string    `json:"firstName" bson:"firstName"`
	LastName      string    `json:"lastName" bson:"lastName"`
	EmailVerified bool      `json:"emailVerified" bson:"emailVerified"`
	// One-time tokens for email verification and password reset. Cleared on use.
	VerifyToken    string    `json:"-" bson:"verifyToken,omitempty"`
	VerifyTokenExp time.Time `json:"-" bson:"verifyTokenExp,omitempty"`
	ResetToken     string    `json:"-" bson:"resetToken,omitempty"`
	ResetTokenExp  time.Time `json:"-" bson:"resetTokenExp,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required" validate:"profile_handle"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" validate:"omitempty,person_name"`
	LastName  string `json:"lastName" validate:"omitempty,person_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type UserUpdate struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Username  *string `json:"username" validate:"omitempty,profile_handle"`
	FirstName *string `json:"firstName" validate:"omitempty,person_name"`
	LastName  *string `json:"lastName" validate:"omitempty,person_name"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// Find* methods return (nil, nil) when no user matches.
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByVerifyToken(ctx context.Context, token string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

type AuthUsecase interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, error)
	Login(ctx context.Context, req *LoginRequest, remoteIP string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type UserUsecase interface {
	Get(ctx context.Context) (*User, error)
	Update(ctx context.Context, upd *UserUpdate) (*User, error)
	// Delete removes the user and every profile they own.
	Delete(ctx context.Context) error
}
