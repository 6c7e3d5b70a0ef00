package usecase

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
	"github.com/ZinoM21/any-cv-api/pkg/upload"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type fileUsecase struct {
	storage       domain.FileStorage
	profiles      domain.ProfileRepository
	validate      *validator.Validate
	maxUploadSize int64
	avatarMaxDim  int
}

func NewFileUsecase(
	storage domain.FileStorage,
	profiles domain.ProfileRepository,
	validate *validator.Validate,
	maxUploadSize int64,
	avatarMaxDim int,
) domain.FileUsecase {
	return &fileUsecase{
		storage:       storage,
		profiles:      profiles,
		validate:      validate,
		maxUploadSize: maxUploadSize,
		avatarMaxDim:  avatarMaxDim,
	}
}

// SignedUploadURL presigns a direct-to-storage upload. Objects are keyed
// under the owner's user ID, which is what the download-side ownership
// checks rely on.
func (u *fileUsecase) SignedUploadURL(ctx context.Context, req *domain.SignedUploadURLRequest) (*domain.SignedURL, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	if req.FileSize > u.maxUploadSize {
		return nil, apperror.BadRequest(fmt.Sprintf("File exceeds maximum size of %d bytes", u.maxUploadSize))
	}

	contentType, err := upload.ContentTypeFor(req.FileName)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	key := buildObjectKey(userID, req.FileName)

	signed, err := u.storage.PresignUpload(ctx, key, contentType, req.FileSize)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return signed, nil
}

func (u *fileUsecase) SignedURL(ctx context.Context, filePath string) (*domain.SignedURL, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if !ownsPath(userID, filePath) {
		return nil, apperror.Forbidden("You can only access your own files")
	}

	signed, err := u.storage.PresignDownload(ctx, filePath)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return signed, nil
}

func (u *fileUsecase) SignedURLs(ctx context.Context, filePaths []string) ([]domain.SignedURL, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	signed := make([]domain.SignedURL, 0, len(filePaths))
	for _, filePath := range filePaths {
		if !ownsPath(userID, filePath) {
			return nil, apperror.Forbidden("You can only access your own files")
		}
		s, err := u.storage.PresignDownload(ctx, filePath)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		signed = append(signed, *s)
	}
	return signed, nil
}

// PublicURL signs a download without authentication for files that belong to
// the owner of a published profile.
func (u *fileUsecase) PublicURL(ctx context.Context, slug, filePath string) (*domain.SignedURL, error) {
	profile, err := u.profiles.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Published profile not found")
	}
	if profile.UserID == "" || !ownsPath(profile.UserID, filePath) {
		return nil, apperror.Forbidden("File does not belong to this profile")
	}

	signed, err := u.storage.PresignDownload(ctx, filePath)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return signed, nil
}

func (u *fileUsecase) UploadAvatar(ctx context.Context, fileName string, data []byte) (*domain.SignedURL, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	contentType, err := upload.Validate(fileName, data, u.maxUploadSize)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	if !upload.IsImage(fileName) {
		return nil, apperror.BadRequest("Avatar must be an image")
	}

	resized, err := upload.Downscale(data, u.avatarMaxDim)
	if err != nil {
		return nil, apperror.BadRequest("Avatar image could not be processed")
	}

	key := fmt.Sprintf("%s/avatar-%s%s", userID, uuid.NewString()[:8], strings.ToLower(filepath.Ext(fileName)))

	if err := u.storage.Put(ctx, key, contentType, resized); err != nil {
		return nil, apperror.Internal(err)
	}

	signed, err := u.storage.PresignDownload(ctx, key)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return signed, nil
}

// buildObjectKey namespaces an object under its owner and prefixes a short
// random ID so repeated uploads of the same file name never collide.
func buildObjectKey(userID, fileName string) string {
	base := filepath.Base(fileName)
	return fmt.Sprintf("%s/%s-%s", userID, uuid.NewString()[:8], base)
}

// ownsPath reports whether filePath sits inside the user's namespace. The
// path is cleaned first so traversal segments cannot escape it.
func ownsPath(userID, filePath string) bool {
	cleaned := path.Clean(filePath)
	return strings.HasPrefix(cleaned, userID+"/")
}
