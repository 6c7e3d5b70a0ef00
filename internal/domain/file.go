package domain

import (
	"context"
	"time"
)

// SignedURL is a pre-authorized URL for one upload or download of the object
// at Path. The URL is only valid until ExpiresAt.
type SignedURL struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SignedUploadURLRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileType string `json:"fileType" binding:"required"`
	FileSize int64  `json:"fileSize" binding:"required,gt=0"`
}

type SignedURLRequest struct {
	FilePath string `json:"filePath" binding:"required"`
}

type SignedURLsRequest struct {
	FilePaths []string `json:"filePaths" binding:"required,min=1,dive,required"`
}

// FileStorage abstracts the S3-compatible object store.
type FileStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (*SignedURL, error)
	PresignDownload(ctx context.Context, key string) (*SignedURL, error)
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type FileUsecase interface {
	SignedUploadURL(ctx context.Context, req *SignedUploadURLRequest) (*SignedURL, error)
	SignedURL(ctx context.Context, filePath string) (*SignedURL, error)
	SignedURLs(ctx context.Context, filePaths []string) ([]SignedURL, error)
	// PublicURL signs a download for a file belonging to a published profile,
	// without authentication.
	PublicURL(ctx context.Context, slug, filePath string) (*SignedURL, error)
	// UploadAvatar validates and stores an avatar image, downscaling large
	// originals, and returns a signed URL for the stored object.
	UploadAvatar(ctx context.Context, fileName string, data []byte) (*SignedURL, error)
}
