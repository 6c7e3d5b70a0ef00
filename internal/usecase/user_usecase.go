package usecase

import (
	"context"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type userUsecase struct {
	users    domain.UserRepository
	profiles domain.ProfileRepository
	validate *validator.Validate
}

func NewUserUsecase(users domain.UserRepository, profiles domain.ProfileRepository, validate *validator.Validate) domain.UserUsecase {
	return &userUsecase{
		users:    users,
		profiles: profiles,
		validate: validate,
	}
}

func (u *userUsecase) Get(ctx context.Context) (*domain.User, error) {
	user, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUsecase) Update(ctx context.Context, upd *domain.UserUpdate) (*domain.User, error) {
	if err := u.validate.Struct(upd); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	user, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil && *upd.Email != user.Email {
		existing, err := u.users.FindByEmail(ctx, *upd.Email)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if existing != nil {
			return nil, apperror.Conflict("Email is already registered")
		}
		user.Email = *upd.Email
		user.EmailVerified = false
	}
	if upd.Username != nil && *upd.Username != user.Username {
		existing, err := u.users.FindByUsername(ctx, *upd.Username)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if existing != nil {
			return nil, apperror.Conflict("Username is already taken")
		}
		user.Username = *upd.Username
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// Delete removes the account and every profile it owns. Published profiles
// disappear with their owner.
func (u *userUsecase) Delete(ctx context.Context) error {
	user, err := u.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := u.profiles.DeleteByUserID(ctx, user.ID); err != nil {
		return apperror.Internal(err)
	}
	if err := u.users.Delete(ctx, user.ID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *userUsecase) currentUser(ctx context.Context) (*domain.User, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}
