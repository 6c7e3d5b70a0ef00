package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/internal/usecase"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
	"github.com/ZinoM21/any-cv-api/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func newProfileUsecase(repo *MockProfileRepo, source *MockSource, normalizer *MockNormalizer, turnstile *MockTurnstile) domain.ProfileUsecase {
	return usecase.NewProfileUsecase(repo, source, normalizer, turnstile, newValidator())
}

func authedCtx(userID string) context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, userID)
}

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"johndoe", "johndoe", false},
		{"john-doe_42", "john-doe_42", false},
		{"https://www.linkedin.com/in/johndoe", "johndoe", false},
		{"https://www.linkedin.com/in/johndoe/", "johndoe", false},
		{"http://linkedin.com/in/john-doe?utm=x", "john-doe", false},
		{"de.linkedin.com/in/johndoe", "johndoe", false},
		{"https://example.com/in/johndoe", "", true},
		{"john doe", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := usecase.ExtractIdentifier(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetOrFetch_StoredProfileSkipsUpstream(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	normalizer := new(MockNormalizer)
	uc := newProfileUsecase(repo, source, normalizer, new(MockTurnstile))

	stored := &domain.Profile{Identifier: "johndoe", LastFetchedAt: time.Now().Add(-90 * 24 * time.Hour)}
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(stored, nil)

	got, err := uc.GetOrFetch(context.Background(), "johndoe", false)

	require.NoError(t, err)
	assert.Equal(t, stored, got)
	// Presence is authoritative, age does not matter.
	source.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestGetOrFetch_MissFetchesAndStoresGuest(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	normalizer := new(MockNormalizer)
	uc := newProfileUsecase(repo, source, normalizer, new(MockTurnstile))

	raw := domain.RawProfilePayload(`{"data":{"publicIdentifier":"johndoe"}}`)
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(nil, nil)
	source.On("Fetch", mock.Anything, "johndoe").Return(raw, nil)
	normalizer.On("Normalize", raw).Return(&domain.Profile{Identifier: "johndoe"}, nil)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

	got, err := uc.GetOrFetch(context.Background(), "johndoe", false)

	require.NoError(t, err)
	assert.Equal(t, "johndoe", got.Identifier)
	assert.False(t, got.LastFetchedAt.IsZero())
	// Anonymous ingestion creates a guest profile with an eviction deadline.
	assert.Empty(t, got.UserID)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *got.ExpiresAt, time.Minute)
	source.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestGetOrFetch_MissAuthenticatedClaimsImmediately(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	normalizer := new(MockNormalizer)
	uc := newProfileUsecase(repo, source, normalizer, new(MockTurnstile))

	raw := domain.RawProfilePayload(`{}`)
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(nil, nil)
	source.On("Fetch", mock.Anything, "johndoe").Return(raw, nil)
	normalizer.On("Normalize", raw).Return(&domain.Profile{Identifier: "johndoe"}, nil)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

	got, err := uc.GetOrFetch(authedCtx("user-1"), "johndoe", false)

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Nil(t, got.ExpiresAt)
}

func TestGetOrFetch_ForceRefreshKeepsOwnership(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	normalizer := new(MockNormalizer)
	uc := newProfileUsecase(repo, source, normalizer, new(MockTurnstile))

	createdAt := time.Now().Add(-30 * 24 * time.Hour)
	existing := &domain.Profile{
		ID:         "id-1",
		Identifier: "johndoe",
		UserID:     "user-1",
		Headline:   "Old headline",
		Publishing: &domain.PublishingOptions{Slug: "johndoe"},
		CreatedAt:  createdAt,
	}
	raw := domain.RawProfilePayload(`{}`)
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(existing, nil)
	source.On("Fetch", mock.Anything, "johndoe").Return(raw, nil)
	normalizer.On("Normalize", raw).Return(&domain.Profile{Identifier: "johndoe", Headline: "New headline"}, nil)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

	got, err := uc.GetOrFetch(authedCtx("user-1"), "johndoe", true)

	require.NoError(t, err)
	assert.Equal(t, "New headline", got.Headline)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, createdAt, got.CreatedAt)
	require.NotNil(t, got.Publishing)
	assert.Equal(t, "johndoe", got.Publishing.Slug)
	source.AssertNumberOfCalls(t, "Fetch", 1)
	repo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestGetOrFetch_UpstreamFailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", apperror.NotFound("Profile johndoe not found")},
		{"rate limited", apperror.TooManyRequests("Profile provider rate limit exceeded")},
		{"upstream error", apperror.BadGateway("Profile provider returned status 500", nil)},
		{"timeout", apperror.GatewayTimeout("Profile provider timed out", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProfileRepo)
			source := new(MockSource)
			normalizer := new(MockNormalizer)
			uc := newProfileUsecase(repo, source, normalizer, new(MockTurnstile))

			repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(nil, nil)
			source.On("Fetch", mock.Anything, "johndoe").Return(nil, tt.err)

			got, err := uc.GetOrFetch(context.Background(), "johndoe", false)

			assert.Nil(t, got)
			// The typed failure passes through unchanged.
			assert.Equal(t, tt.err, err)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
			normalizer.AssertNotCalled(t, "Normalize", mock.Anything)
		})
	}
}

func TestGetOrFetch_MalformedPayloadNotStored(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	normalizer := new(MockNormalizer)
	uc := newProfileUsecase(repo, source, normalizer, new(MockTurnstile))

	raw := domain.RawProfilePayload(`{"success":true,"data":{}}`)
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(nil, nil)
	source.On("Fetch", mock.Anything, "johndoe").Return(raw, nil)
	normalizer.On("Normalize", raw).Return(nil, apperror.UnprocessableEntity("Profile payload has no usable identifier"))

	_, err := uc.GetOrFetch(context.Background(), "johndoe", false)

	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestGet_OwnedProfileHiddenFromOthers(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

	owned := &domain.Profile{Identifier: "johndoe", UserID: "user-1"}
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(owned, nil)

	t.Run("other user is rejected", func(t *testing.T) {
		_, err := uc.Get(authedCtx("user-2"), "johndoe")
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := uc.Get(context.Background(), "johndoe")
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("owner can read", func(t *testing.T) {
		got, err := uc.Get(authedCtx("user-1"), "johndoe")
		require.NoError(t, err)
		assert.Equal(t, owned, got)
	})
}

func TestCreate_TurnstileRejectionBlocksFetch(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	turnstile := new(MockTurnstile)
	uc := newProfileUsecase(repo, source, new(MockNormalizer), turnstile)

	turnstile.On("Verify", mock.Anything, "bad-token", "1.2.3.4").
		Return(apperror.Forbidden("Bot protection check failed"))

	_, err := uc.Create(context.Background(), "johndoe", "1.2.3.4", &domain.CreateProfileRequest{TurnstileToken: "bad-token"})

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	source.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestCreate_AcceptsFullProfileLink(t *testing.T) {
	repo := new(MockProfileRepo)
	source := new(MockSource)
	turnstile := new(MockTurnstile)
	uc := newProfileUsecase(repo, source, new(MockNormalizer), turnstile)

	turnstile.On("Verify", mock.Anything, "token", "1.2.3.4").Return(nil)
	stored := &domain.Profile{Identifier: "john-doe"}
	repo.On("FindByIdentifier", mock.Anything, "john-doe").Return(stored, nil)

	got, err := uc.Create(context.Background(), "https://www.linkedin.com/in/john-doe/", "1.2.3.4", &domain.CreateProfileRequest{TurnstileToken: "token"})

	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestUpdate_AppliesPatchAndReplaces(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

	existing := &domain.Profile{
		Identifier: "johndoe",
		UserID:     "user-1",
		Headline:   "Old headline",
		About:      "Old about",
		Skills:     []domain.SectionEntry{{Title: "Go"}},
	}
	repo.On("FindByIdentifier", mock.Anything, "johndoe").Return(existing, nil)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

	headline := "New headline"
	skills := []domain.SectionEntry{{Title: "Go"}, {Title: "Rust"}}
	got, err := uc.Update(authedCtx("user-1"), "johndoe", &domain.ProfileUpdate{
		Headline: &headline,
		Skills:   &skills,
	})

	require.NoError(t, err)
	assert.Equal(t, "New headline", got.Headline)
	assert.Equal(t, "Old about", got.About)
	assert.Len(t, got.Skills, 2)
}

func TestDelete(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

	t.Run("missing profile", func(t *testing.T) {
		repo.On("FindByIdentifier", mock.Anything, "ghost").Return(nil, nil).Once()
		err := uc.Delete(context.Background(), "ghost")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1"}, nil).Once()
		repo.On("Delete", mock.Anything, "johndoe").Return(nil).Once()
		err := uc.Delete(authedCtx("user-1"), "johndoe")
		assert.NoError(t, err)
	})
}

func TestPublish(t *testing.T) {
	t.Run("guest profile cannot be published", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe"}, nil)

		_, err := uc.Publish(authedCtx("user-1"), "johndoe", &domain.PublishRequest{})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("slug conflict", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1"}, nil)
		repo.On("FindPublishedBySlug", mock.Anything, "taken").
			Return(&domain.Profile{Identifier: "someone-else"}, nil)

		_, err := uc.Publish(authedCtx("user-1"), "johndoe", &domain.PublishRequest{Slug: "taken"})
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("defaults slug to identifier", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1"}, nil)
		repo.On("FindPublishedBySlug", mock.Anything, "johndoe").Return(nil, nil)
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

		got, err := uc.Publish(authedCtx("user-1"), "johndoe", &domain.PublishRequest{TemplateID: "classic"})

		require.NoError(t, err)
		require.NotNil(t, got.Publishing)
		assert.Equal(t, "johndoe", got.Publishing.Slug)
		assert.Equal(t, "classic", got.Publishing.TemplateID)
		assert.False(t, got.Publishing.PublishedAt.IsZero())
	})
}

func TestUnpublish(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

	repo.On("FindByIdentifier", mock.Anything, "johndoe").
		Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1", Publishing: &domain.PublishingOptions{Slug: "johndoe"}}, nil)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

	got, err := uc.Unpublish(authedCtx("user-1"), "johndoe")

	require.NoError(t, err)
	assert.Nil(t, got.Publishing)
}

func TestTransfer(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		uc := newProfileUsecase(new(MockProfileRepo), new(MockSource), new(MockNormalizer), new(MockTurnstile))
		_, err := uc.Transfer(context.Background(), "johndoe")
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("claims guest profile", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

		expiry := time.Now().Add(24 * time.Hour)
		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", ExpiresAt: &expiry}, nil)
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil, nil)

		got, err := uc.Transfer(authedCtx("user-1"), "johndoe")

		require.NoError(t, err)
		assert.Equal(t, "user-1", got.UserID)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("claiming again is a no-op", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-1"}, nil)

		got, err := uc.Transfer(authedCtx("user-1"), "johndoe")

		require.NoError(t, err)
		assert.Equal(t, "user-1", got.UserID)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("claimed by someone else", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

		repo.On("FindByIdentifier", mock.Anything, "johndoe").
			Return(&domain.Profile{Identifier: "johndoe", UserID: "user-2"}, nil)

		_, err := uc.Transfer(authedCtx("user-1"), "johndoe")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestListMineRequiresAuth(t *testing.T) {
	uc := newProfileUsecase(new(MockProfileRepo), new(MockSource), new(MockNormalizer), new(MockTurnstile))

	_, err := uc.ListMine(context.Background())
	assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
}

func TestGetPublished(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := newProfileUsecase(repo, new(MockSource), new(MockNormalizer), new(MockTurnstile))

	repo.On("FindPublishedBySlug", mock.Anything, "ghost").Return(nil, nil)

	_, err := uc.GetPublished(context.Background(), "ghost")
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
}
