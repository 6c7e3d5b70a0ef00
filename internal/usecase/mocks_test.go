package usecase_test

import (
	"context"

	"github.com/ZinoM21/any-cv-api/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories

type MockProfileRepo struct {
	mock.Mock
}

// Upsert echoes the input profile back when the expectation returns (nil, nil),
// mirroring the real replace-and-return behavior.
func (m *MockProfileRepo) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return profile, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) FindByIdentifier(ctx context.Context, identifier string) (*domain.Profile, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) FindByUserID(ctx context.Context, userID string) ([]domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) FindPublished(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) FindPublishedBySlug(ctx context.Context, slug string) (*domain.Profile, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Delete(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

func (m *MockProfileRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// Mock Adapters

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Fetch(ctx context.Context, identifier string) (domain.RawProfilePayload, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RawProfilePayload), args.Error(1)
}

type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(raw domain.RawProfilePayload) (*domain.Profile, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type MockTurnstile struct {
	mock.Mock
}

func (m *MockTurnstile) Verify(ctx context.Context, token, remoteIP string) error {
	return m.Called(ctx, token, remoteIP).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockMailer) SendVerificationEmail(toEmail, name, token string) error {
	return m.Called(toEmail, name, token).Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(toEmail, name, token string) error {
	return m.Called(toEmail, name, token).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PresignUpload(ctx context.Context, key, contentType string, size int64) (*domain.SignedURL, error) {
	args := m.Called(ctx, key, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignedURL), args.Error(1)
}

func (m *MockStorage) PresignDownload(ctx context.Context, key string) (*domain.SignedURL, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignedURL), args.Error(1)
}

func (m *MockStorage) Put(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
