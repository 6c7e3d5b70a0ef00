package linkedin

import (
	"net/http"
	"os"
	"testing"

	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) domain.RawProfilePayload {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return raw
}

func TestNormalize_FullPayload(t *testing.T) {
	n := NewNormalizer()

	profile, err := n.Normalize(loadFixture(t, "johndoe.json"))

	require.NoError(t, err)
	assert.Equal(t, "johndoe", profile.Identifier)
	assert.Equal(t, "John", profile.FirstName)
	assert.Equal(t, "Doe", profile.LastName)
	assert.Equal(t, "John Doe", profile.FullName)
	assert.Equal(t, "Senior Backend Developer at Acme Corp", profile.Headline)
	assert.Equal(t, "Berlin, Germany", profile.Location)
	assert.Equal(t, "Berlin", profile.City)
	assert.Equal(t, "Germany", profile.Country)

	assert.Len(t, profile.Experiences, 3)
	assert.Len(t, profile.Educations, 2)
	assert.Len(t, profile.Skills, 9)
	assert.Equal(t, "Senior Backend Developer", profile.Experiences[0].Title)
}

func TestNormalize_FragmentMapping(t *testing.T) {
	n := NewNormalizer()

	profile, err := n.Normalize(loadFixture(t, "johndoe.json"))
	require.NoError(t, err)

	// First experience has one text and one insight fragment, in payload order.
	fragments := profile.Experiences[0].Fragments
	require.Len(t, fragments, 2)
	assert.Equal(t, domain.FragmentText, fragments[0].Kind)
	assert.Contains(t, fragments[0].Text, "payments platform")
	assert.Equal(t, domain.FragmentInsight, fragments[1].Kind)
	assert.Equal(t, "Skills: Go · PostgreSQL · Kafka", fragments[1].Text)
}

func TestNormalize_BreakdownCarriedVerbatim(t *testing.T) {
	n := NewNormalizer()

	profile, err := n.Normalize(loadFixture(t, "johndoe.json"))
	require.NoError(t, err)

	assert.False(t, profile.Experiences[0].Breakdown)
	assert.True(t, profile.Projects[0].Breakdown)
}

func TestNormalize_MissingOptionalFieldsDefault(t *testing.T) {
	n := NewNormalizer()

	raw := []byte(`{"success": true, "data": {"publicIdentifier": "janedoe"}}`)

	profile, err := n.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "janedoe", profile.Identifier)
	assert.Empty(t, profile.FirstName)
	assert.Empty(t, profile.Headline)
	assert.NotNil(t, profile.Experiences)
	assert.Empty(t, profile.Experiences)
	assert.NotNil(t, profile.Skills)
	assert.Empty(t, profile.Skills)
}

func TestNormalize_BarePayloadWithoutEnvelope(t *testing.T) {
	n := NewNormalizer()

	raw := []byte(`{"publicIdentifier": "janedoe", "firstName": "Jane"}`)

	profile, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", profile.Identifier)
	assert.Equal(t, "Jane", profile.FirstName)
}

func TestNormalize_MissingIdentifierRejected(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty identifier", `{"success": true, "data": {"publicIdentifier": "", "firstName": "Jane"}}`},
		{"no data", `{"success": true}`},
		{"not json", `<html>rate limited</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := n.Normalize([]byte(tt.raw))
			assert.Nil(t, profile)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		})
	}
}

func TestNormalize_MalformedDescriptionItemsSkipped(t *testing.T) {
	n := NewNormalizer()

	// Description lists occasionally contain bare strings or nulls; they must
	// not fail the whole payload.
	raw := []byte(`{
		"success": true,
		"data": {
			"publicIdentifier": "janedoe",
			"experiences": [{
				"title": "Engineer",
				"subComponents": [{
					"description": [
						"just a string",
						null,
						{"type": "textComponent", "text": "kept"},
						{"type": "mediaComponent", "text": "dropped"},
						{"type": "textComponent", "text": ""}
					]
				}]
			}]
		}
	}`)

	profile, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, profile.Experiences, 1)
	require.Len(t, profile.Experiences[0].Fragments, 1)
	assert.Equal(t, "kept", profile.Experiences[0].Fragments[0].Text)
}

func TestNormalize_IsDeterministic(t *testing.T) {
	n := NewNormalizer()
	raw := loadFixture(t, "johndoe.json")

	first, err := n.Normalize(raw)
	require.NoError(t, err)
	second, err := n.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.LastFetchedAt.IsZero())
	assert.Empty(t, first.ID)
}
