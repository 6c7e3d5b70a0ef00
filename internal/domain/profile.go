package domain

import (
	"context"
	"time"
)

// FragmentKind tags one unit of descriptive text inside a section entry.
// The upstream payload mixes plain text and "insight" annotations in a single
// description list; the tag is preserved verbatim, never interpreted.
type FragmentKind string

const (
	FragmentText    FragmentKind = "text"
	FragmentInsight FragmentKind = "insight"
)

type Fragment struct {
	Kind FragmentKind `json:"kind" bson:"kind"`
	Text string       `json:"text" bson:"text"`
}

// SectionEntry is one entry of any profile section (experience, education,
// certification, language, volunteering, project, skill). The upstream source
// renders all of these with the same loose shape, so we keep a single type.
// Caption and Metadata are free text (date ranges, locations, employment
// types); they are stored as-is.
type SectionEntry struct {
	Title     string     `json:"title" bson:"title"`
	Subtitle  string     `json:"subtitle" bson:"subtitle"`
	Caption   string     `json:"caption" bson:"caption"`
	Metadata  string     `json:"metadata" bson:"metadata"`
	Breakdown bool       `json:"breakdown" bson:"breakdown"` // carried from upstream, no semantics attached
	Fragments []Fragment `json:"fragments" bson:"fragments"`
}

// PublishingOptions marks a profile as publicly visible under a slug.
type PublishingOptions struct {
	Slug        string    `json:"slug" bson:"slug"`
	TemplateID  string    `json:"templateId,omitempty" bson:"templateId,omitempty"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
}

// Profile is the normalized form of an ingested public profile.
// Identifier is the public handle on the upstream source and the unique key
// here. Re-ingesting the same identifier replaces the record wholesale.
// A profile without a UserID is a guest profile and carries an ExpiresAt
// timestamp that a TTL index evicts on.
type Profile struct {
	ID                string             `json:"id,omitempty" bson:"_id,omitempty"`
	Identifier        string             `json:"identifier" bson:"identifier"`
	UserID            string             `json:"userId,omitempty" bson:"userId,omitempty"`
	FirstName         string             `json:"firstName" bson:"firstName"`
	LastName          string             `json:"lastName" bson:"lastName"`
	FullName          string             `json:"fullName" bson:"fullName"`
	Headline          string             `json:"headline" bson:"headline"`
	About             string             `json:"about" bson:"about"`
	ProfilePictureURL string             `json:"profilePictureUrl" bson:"profilePictureUrl"`
	Location          string             `json:"location" bson:"location"`
	City              string             `json:"city" bson:"city"`
	Country           string             `json:"country" bson:"country"`
	Experiences       []SectionEntry     `json:"experiences" bson:"experiences"`
	Educations        []SectionEntry     `json:"educations" bson:"educations"`
	Certifications    []SectionEntry     `json:"certifications" bson:"certifications"`
	Languages         []SectionEntry     `json:"languages" bson:"languages"`
	Volunteering      []SectionEntry     `json:"volunteering" bson:"volunteering"`
	Projects          []SectionEntry     `json:"projects" bson:"projects"`
	Skills            []SectionEntry     `json:"skills" bson:"skills"`
	Publishing        *PublishingOptions `json:"publishing,omitempty" bson:"publishing,omitempty"`
	LastFetchedAt     time.Time          `json:"lastFetchedAt" bson:"lastFetchedAt"`
	ExpiresAt         *time.Time         `json:"-" bson:"expiresAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsGuest reports whether the profile has not been claimed by a user yet.
func (p *Profile) IsGuest() bool {
	return p.UserID == ""
}

// RawProfilePayload is the unparsed JSON body returned by the upstream
// profile source. It only exists between fetch and normalization.
type RawProfilePayload []byte

// ProfileUpdate carries a wholesale section update. Nil fields are left
// untouched; non-nil slices replace the stored section entirely (upstream
// data has no stable sub-identifiers to merge against).
type ProfileUpdate struct {
	FirstName         *string         `json:"firstName"`
	LastName          *string         `json:"lastName"`
	FullName          *string         `json:"fullName"`
	Headline          *string         `json:"headline"`
	About             *string         `json:"about"`
	ProfilePictureURL *string         `json:"profilePictureUrl"`
	Location          *string         `json:"location"`
	City              *string         `json:"city"`
	Country           *string         `json:"country"`
	Experiences       *[]SectionEntry `json:"experiences"`
	Educations        *[]SectionEntry `json:"educations"`
	Certifications    *[]SectionEntry `json:"certifications"`
	Languages         *[]SectionEntry `json:"languages"`
	Volunteering      *[]SectionEntry `json:"volunteering"`
	Projects          *[]SectionEntry `json:"projects"`
	Skills            *[]SectionEntry `json:"skills"`
}

// PublishRequest carries publishing options for a profile.
type PublishRequest struct {
	Slug       string `json:"slug" validate:"omitempty,profile_handle"`
	TemplateID string `json:"templateId"`
}

// CreateProfileRequest is the input of profile creation/ingestion.
type CreateProfileRequest struct {
	TurnstileToken string `json:"turnstileToken"`
	ForceRefresh   bool   `json:"forceRefresh"`
}

type ProfileRepository interface {
	// Upsert replaces the stored profile with the same identifier, inserting
	// when absent, and returns the stored form. Last writer wins.
	Upsert(ctx context.Context, profile *Profile) (*Profile, error)
	// FindByIdentifier returns (nil, nil) when no profile is stored.
	FindByIdentifier(ctx context.Context, identifier string) (*Profile, error)
	FindByUserID(ctx context.Context, userID string) ([]Profile, error)
	FindPublished(ctx context.Context) ([]Profile, error)
	// FindPublishedBySlug returns (nil, nil) when no published profile matches.
	FindPublishedBySlug(ctx context.Context, slug string) (*Profile, error)
	Delete(ctx context.Context, identifier string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileSource fetches the raw payload for a public identifier from the
// upstream data provider. A single attempt per call; retry policy, if any,
// belongs to the caller. Failures are typed: not found, rate limited,
// upstream error, timeout.
type ProfileSource interface {
	Fetch(ctx context.Context, identifier string) (RawProfilePayload, error)
}

// ProfileNormalizer maps a raw payload to the internal Profile schema.
// Missing optional fields default to empty values; only a payload without a
// usable identifier is rejected.
type ProfileNormalizer interface {
	Normalize(raw RawProfilePayload) (*Profile, error)
}

// TurnstileVerifier checks a bot-protection token for profile creation.
type TurnstileVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type ProfileUsecase interface {
	// GetOrFetch returns the stored profile for identifier, fetching,
	// normalizing and upserting from the upstream source when nothing is
	// stored or forceRefresh is set. Upstream failures propagate unchanged
	// and leave stored state untouched.
	GetOrFetch(ctx context.Context, identifier string, forceRefresh bool) (*Profile, error)
	Get(ctx context.Context, identifier string) (*Profile, error)
	Create(ctx context.Context, identifierOrLink, remoteIP string, req *CreateProfileRequest) (*Profile, error)
	Update(ctx context.Context, identifier string, upd *ProfileUpdate) (*Profile, error)
	Delete(ctx context.Context, identifier string) error
	Publish(ctx context.Context, identifier string, req *PublishRequest) (*Profile, error)
	Unpublish(ctx context.Context, identifier string) (*Profile, error)
	Transfer(ctx context.Context, identifier string) (*Profile, error)
	ListMine(ctx context.Context) ([]Profile, error)
	ListPublished(ctx context.Context) ([]Profile, error)
	GetPublished(ctx context.Context, slug string) (*Profile, error)
}
