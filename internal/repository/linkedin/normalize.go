package linkedin

import (
	"encoding/json"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
)

type normalizer struct{}

// NewNormalizer returns the mapper from raw provider payloads to the internal
// profile schema. Normalization is pure: same payload in, same profile out.
// Timestamps and storage IDs are assigned by the caller.
func NewNormalizer() domain.ProfileNormalizer {
	return &normalizer{}
}

// Normalize maps a raw payload to a Profile. Every optional field defaults to
// its empty value and section order is kept as received. The only rejection is
// a payload without a public identifier: without the unique key the record
// cannot be stored or refreshed.
func (n *normalizer) Normalize(raw domain.RawProfilePayload) (*domain.Profile, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperror.UnprocessableEntity("Profile payload is not valid JSON")
	}

	data := env.Data
	if data == nil {
		// Some provider responses put the profile at the top level without
		// the envelope. Try that shape before giving up.
		var bare payloadData
		if err := json.Unmarshal(raw, &bare); err != nil || bare.PublicIdentifier == "" {
			return nil, apperror.UnprocessableEntity("Profile payload has no usable identifier")
		}
		data = &bare
	}

	if data.PublicIdentifier == "" {
		return nil, apperror.UnprocessableEntity("Profile payload has no usable identifier")
	}

	return &domain.Profile{
		Identifier:        data.PublicIdentifier,
		FirstName:         data.FirstName,
		LastName:          data.LastName,
		FullName:          data.FullName,
		Headline:          data.Headline,
		About:             data.About,
		ProfilePictureURL: data.ProfilePic,
		Location:          data.AddressWithCountry,
		City:              data.AddressWithoutCountry,
		Country:           data.AddressCountryOnly,
		Experiences:       mapEntries(data.Experiences),
		Educations:        mapEntries(data.Educations),
		Certifications:    mapEntries(data.Certifications),
		Languages:         mapEntries(data.Languages),
		Volunteering:      mapEntries(data.VolunteerAndAwards),
		Projects:          mapEntries(data.Projects),
		Skills:            mapEntries(data.Skills),
	}, nil
}

func mapEntries(entries []payloadEntry) []domain.SectionEntry {
	out := make([]domain.SectionEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.SectionEntry{
			Title:     e.Title,
			Subtitle:  e.Subtitle,
			Caption:   e.Caption,
			Metadata:  e.Metadata,
			Breakdown: e.Breakdown,
			Fragments: mapFragments(e.SubComponents),
		})
	}
	return out
}

// mapFragments flattens the nested subComponents/description lists into the
// ordered fragment list. Unknown component types and empty texts are dropped,
// everything else is carried verbatim.
func mapFragments(subs []payloadSubSection) []domain.Fragment {
	out := []domain.Fragment{}
	for _, sub := range subs {
		for _, desc := range sub.Description {
			if desc.Text == "" {
				continue
			}
			switch desc.Type {
			case "textComponent":
				out = append(out, domain.Fragment{Kind: domain.FragmentText, Text: desc.Text})
			case "insightComponent":
				out = append(out, domain.Fragment{Kind: domain.FragmentInsight, Text: desc.Text})
			}
		}
	}
	return out
}
