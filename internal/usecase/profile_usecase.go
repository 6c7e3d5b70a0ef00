package usecase

import (
	"context"
	"regexp"
	"time"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// guestProfileTTL is how long an unclaimed profile survives before the store
// evicts it.
const guestProfileTTL = 7 * 24 * time.Hour

var (
	profileLinkPattern = regexp.MustCompile(`^(?:https?://)?(?:[\w]+\.)?linkedin\.com/in/([\w\-]+)/?`)
	identifierPattern  = regexp.MustCompile(`^[\w\-]+$`)
)

// ExtractIdentifier accepts either a bare public handle or a full profile
// link and returns the handle.
func ExtractIdentifier(input string) (string, error) {
	if m := profileLinkPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if identifierPattern.MatchString(input) {
		return input, nil
	}
	return "", apperror.BadRequest("Invalid profile identifier or link")
}

type profileUsecase struct {
	repo       domain.ProfileRepository
	source     domain.ProfileSource
	normalizer domain.ProfileNormalizer
	turnstile  domain.TurnstileVerifier
	validate   *validator.Validate
}

func NewProfileUsecase(
	repo domain.ProfileRepository,
	source domain.ProfileSource,
	normalizer domain.ProfileNormalizer,
	turnstile domain.TurnstileVerifier,
	validate *validator.Validate,
) domain.ProfileUsecase {
	return &profileUsecase{
		repo:       repo,
		source:     source,
		normalizer: normalizer,
		turnstile:  turnstile,
		validate:   validate,
	}
}

// GetOrFetch returns the stored profile for identifier, calling out to the
// upstream source only when nothing is stored or forceRefresh is set.
// Presence alone makes a stored profile authoritative: there is no staleness
// check. Any fetch or normalization failure propagates unchanged and leaves
// stored state untouched.
func (u *profileUsecase) GetOrFetch(ctx context.Context, identifier string, forceRefresh bool) (*domain.Profile, error) {
	existing, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil && !forceRefresh {
		if err := u.authorize(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if existing != nil {
		if err := u.authorize(ctx, existing); err != nil {
			return nil, err
		}
	}

	raw, err := u.source.Fetch(ctx, identifier)
	if err != nil {
		return nil, err
	}

	profile, err := u.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile.LastFetchedAt = now

	if existing != nil {
		// Refresh replaces the ingested data but keeps ownership, publishing
		// state and lifecycle timestamps.
		profile.ID = existing.ID
		profile.UserID = existing.UserID
		profile.Publishing = existing.Publishing
		profile.ExpiresAt = existing.ExpiresAt
		profile.CreatedAt = existing.CreatedAt
	} else if userID := userIDFrom(ctx); userID != "" {
		profile.UserID = userID
	} else {
		expiry := now.Add(guestProfileTTL)
		profile.ExpiresAt = &expiry
	}

	stored, err := u.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stored, nil
}

func (u *profileUsecase) Get(ctx context.Context, identifier string) (*domain.Profile, error) {
	profile, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	if err := u.authorize(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Create ingests a profile from a handle or full link. The bot-protection
// token is checked before any upstream call is made.
func (u *profileUsecase) Create(ctx context.Context, identifierOrLink, remoteIP string, req *domain.CreateProfileRequest) (*domain.Profile, error) {
	if err := u.turnstile.Verify(ctx, req.TurnstileToken, remoteIP); err != nil {
		return nil, err
	}

	identifier, err := ExtractIdentifier(identifierOrLink)
	if err != nil {
		return nil, err
	}

	return u.GetOrFetch(ctx, identifier, req.ForceRefresh)
}

func (u *profileUsecase) Update(ctx context.Context, identifier string, upd *domain.ProfileUpdate) (*domain.Profile, error) {
	profile, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	if err := u.authorize(ctx, profile); err != nil {
		return nil, err
	}

	applyProfileUpdate(profile, upd)

	stored, err := u.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stored, nil
}

func (u *profileUsecase) Delete(ctx context.Context, identifier string) error {
	profile, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return apperror.Internal(err)
	}
	if profile == nil {
		return apperror.NotFound("Profile not found")
	}
	if err := u.authorize(ctx, profile); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, identifier); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *profileUsecase) Publish(ctx context.Context, identifier string, req *domain.PublishRequest) (*domain.Profile, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	profile, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	if profile.IsGuest() {
		return nil, apperror.Forbidden("Claim the profile before publishing it")
	}
	if profile.UserID != userID {
		return nil, apperror.Forbidden("You can only publish your own profiles")
	}

	slug := req.Slug
	if slug == "" {
		slug = profile.Identifier
	}

	taken, err := u.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if taken != nil && taken.Identifier != profile.Identifier {
		return nil, apperror.Conflict("Slug is already in use")
	}

	profile.Publishing = &domain.PublishingOptions{
		Slug:        slug,
		TemplateID:  req.TemplateID,
		PublishedAt: time.Now().UTC(),
	}

	stored, err := u.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stored, nil
}

func (u *profileUsecase) Unpublish(ctx context.Context, identifier string) (*domain.Profile, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	profile, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	if profile.UserID != userID {
		return nil, apperror.Forbidden("You can only unpublish your own profiles")
	}

	profile.Publishing = nil

	stored, err := u.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stored, nil
}

// Transfer claims a guest profile for the authenticated user, removing its
// eviction deadline. Claiming a profile twice is a no-op for the same user
// and forbidden for anyone else.
func (u *profileUsecase) Transfer(ctx context.Context, identifier string) (*domain.Profile, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	profile, err := u.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	if !profile.IsGuest() {
		if profile.UserID == userID {
			return profile, nil
		}
		return nil, apperror.Forbidden("Profile is already claimed")
	}

	profile.UserID = userID
	profile.ExpiresAt = nil

	stored, err := u.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stored, nil
}

func (u *profileUsecase) ListMine(ctx context.Context) ([]domain.Profile, error) {
	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	profiles, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profiles, nil
}

func (u *profileUsecase) ListPublished(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := u.repo.FindPublished(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profiles, nil
}

func (u *profileUsecase) GetPublished(ctx context.Context, slug string) (*domain.Profile, error) {
	profile, err := u.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound("Published profile not found")
	}
	return profile, nil
}

// authorize allows access to guest profiles for everyone holding the
// identifier and restricts claimed profiles to their owner.
func (u *profileUsecase) authorize(ctx context.Context, profile *domain.Profile) error {
	if profile.IsGuest() {
		return nil
	}
	if userIDFrom(ctx) != profile.UserID {
		return apperror.Forbidden("You can only access your own profiles")
	}
	return nil
}

func userIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(domain.KeyUserID).(string)
	return userID
}

func applyProfileUpdate(p *domain.Profile, upd *domain.ProfileUpdate) {
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.FullName != nil {
		p.FullName = *upd.FullName
	}
	if upd.Headline != nil {
		p.Headline = *upd.Headline
	}
	if upd.About != nil {
		p.About = *upd.About
	}
	if upd.ProfilePictureURL != nil {
		p.ProfilePictureURL = *upd.ProfilePictureURL
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	if upd.City != nil {
		p.City = *upd.City
	}
	if upd.Country != nil {
		p.Country = *upd.Country
	}
	if upd.Experiences != nil {
		p.Experiences = *upd.Experiences
	}
	if upd.Educations != nil {
		p.Educations = *upd.Educations
	}
	if upd.Certifications != nil {
		p.Certifications = *upd.Certifications
	}
	if upd.Languages != nil {
		p.Languages = *upd.Languages
	}
	if upd.Volunteering != nil {
		p.Volunteering = *upd.Volunteering
	}
	if upd.Projects != nil {
		p.Projects = *upd.Projects
	}
	if upd.Skills != nil {
		p.Skills = *upd.Skills
	}
}
