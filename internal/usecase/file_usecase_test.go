package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"testing"
	"time"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/internal/usecase"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFileUsecase(storage *MockStorage, profiles *MockProfileRepo) domain.FileUsecase {
	return usecase.NewFileUsecase(storage, profiles, newValidator(), 5*1024*1024, 512)
}

func TestSignedUploadURL(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		uc := newFileUsecase(new(MockStorage), new(MockProfileRepo))

		_, err := uc.SignedUploadURL(context.Background(), &domain.SignedUploadURLRequest{
			FileName: "cv.pdf", FileType: "application/pdf", FileSize: 100,
		})
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("keys object under the user", func(t *testing.T) {
		storage := new(MockStorage)
		uc := newFileUsecase(storage, new(MockProfileRepo))

		var gotKey string
		storage.On("PresignUpload", mock.Anything, mock.AnythingOfType("string"), "application/pdf", int64(100)).
			Run(func(args mock.Arguments) { gotKey = args.String(1) }).
			Return(&domain.SignedURL{URL: "https://signed", ExpiresAt: time.Now().Add(15 * time.Minute)}, nil)

		signed, err := uc.SignedUploadURL(authedCtx("user-1"), &domain.SignedUploadURLRequest{
			FileName: "cv.pdf", FileType: "application/pdf", FileSize: 100,
		})

		require.NoError(t, err)
		assert.Equal(t, "https://signed", signed.URL)
		assert.Regexp(t, `^user-1/[0-9a-f]{8}-cv\.pdf$`, gotKey)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		uc := newFileUsecase(new(MockStorage), new(MockProfileRepo))

		_, err := uc.SignedUploadURL(authedCtx("user-1"), &domain.SignedUploadURLRequest{
			FileName: "cv.pdf", FileType: "application/pdf", FileSize: 50 * 1024 * 1024,
		})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("rejects disallowed extensions", func(t *testing.T) {
		uc := newFileUsecase(new(MockStorage), new(MockProfileRepo))

		_, err := uc.SignedUploadURL(authedCtx("user-1"), &domain.SignedUploadURLRequest{
			FileName: "payload.exe", FileType: "application/octet-stream", FileSize: 100,
		})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func TestSignedURL_OwnershipEnforced(t *testing.T) {
	storage := new(MockStorage)
	uc := newFileUsecase(storage, new(MockProfileRepo))

	t.Run("own file", func(t *testing.T) {
		storage.On("PresignDownload", mock.Anything, "user-1/abc-cv.pdf").
			Return(&domain.SignedURL{URL: "https://signed"}, nil).Once()

		signed, err := uc.SignedURL(authedCtx("user-1"), "user-1/abc-cv.pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://signed", signed.URL)
	})

	t.Run("someone else's file", func(t *testing.T) {
		_, err := uc.SignedURL(authedCtx("user-1"), "user-2/abc-cv.pdf")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := uc.SignedURL(authedCtx("user-1"), "user-1/../user-2/cv.pdf")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestPublicURL(t *testing.T) {
	t.Run("unknown slug", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		uc := newFileUsecase(new(MockStorage), profiles)

		profiles.On("FindPublishedBySlug", mock.Anything, "ghost").Return(nil, nil)

		_, err := uc.PublicURL(context.Background(), "ghost", "user-1/cv.pdf")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("file outside the owner's namespace", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		uc := newFileUsecase(new(MockStorage), profiles)

		profiles.On("FindPublishedBySlug", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1"}, nil)

		_, err := uc.PublicURL(context.Background(), "johndoe", "user-2/cv.pdf")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("owner's file is signed without auth", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		storage := new(MockStorage)
		uc := newFileUsecase(storage, profiles)

		profiles.On("FindPublishedBySlug", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1"}, nil)
		storage.On("PresignDownload", mock.Anything, "user-1/cv.pdf").
			Return(&domain.SignedURL{URL: "https://signed"}, nil)

		signed, err := uc.PublicURL(context.Background(), "johndoe", "user-1/cv.pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://signed", signed.URL)
	})
}

func TestUploadAvatar_RejectsNonImages(t *testing.T) {
	uc := newFileUsecase(new(MockStorage), new(MockProfileRepo))

	_, err := uc.UploadAvatar(authedCtx("user-1"), "cv.pdf", []byte("%PDF-1.7 content"))
	assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
}

func TestUploadAvatar_StoresAndSigns(t *testing.T) {
	storage := new(MockStorage)
	uc := newFileUsecase(storage, new(MockProfileRepo))

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))
	jpegData := buf.Bytes()

	var putKey string
	storage.On("Put", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", mock.Anything).
		Run(func(args mock.Arguments) { putKey = args.String(1) }).
		Return(nil)
	storage.On("PresignDownload", mock.Anything, mock.AnythingOfType("string")).
		Return(&domain.SignedURL{URL: "https://signed"}, nil)

	signed, err := uc.UploadAvatar(authedCtx("user-1"), "me.jpg", jpegData)

	require.NoError(t, err)
	assert.Equal(t, "https://signed", signed.URL)
	assert.Regexp(t, `^user-1/avatar-[0-9a-f]{8}\.jpg$`, putKey)
}
