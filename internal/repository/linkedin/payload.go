package linkedin

import "encoding/json"

// The RapidAPI provider wraps profile data in a success envelope. Every field
// below is optional upstream: absent, null and empty-string all occur in the
// wild, so the decoder defaults everything and the normalizer fills in
// explicit empty values.
type envelope struct {
	Success bool         `json:"success"`
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Data    *payloadData `json:"data"`
}

type payloadData struct {
	PublicIdentifier      string         `json:"publicIdentifier"`
	FirstName             string         `json:"firstName"`
	LastName              string         `json:"lastName"`
	FullName              string         `json:"fullName"`
	Headline              string         `json:"headline"`
	About                 string         `json:"about"`
	ProfilePic            string         `json:"profilePic"`
	AddressWithCountry    string         `json:"addressWithCountry"`
	AddressCountryOnly    string         `json:"addressCountryOnly"`
	AddressWithoutCountry string         `json:"addressWithoutCountry"`
	Experiences           []payloadEntry `json:"experiences"`
	Educations            []payloadEntry `json:"educations"`
	Certifications        []payloadEntry `json:"licenseAndCertificates"`
	Languages             []payloadEntry `json:"languages"`
	VolunteerAndAwards    []payloadEntry `json:"volunteerAndAwards"`
	Projects              []payloadEntry `json:"projects"`
	Skills                []payloadEntry `json:"skills"`
}

type payloadEntry struct {
	Title         string              `json:"title"`
	Subtitle      string              `json:"subtitle"`
	Caption       string              `json:"caption"`
	Metadata      string              `json:"metadata"`
	Breakdown     bool                `json:"breakdown"`
	SubComponents []payloadSubSection `json:"subComponents"`
}

type payloadSubSection struct {
	Description []payloadDescription `json:"description"`
}

// payloadDescription is one description item. Upstream usually sends
// {"type": "textComponent"|"insightComponent", "text": "..."} but bare
// strings and other shapes appear occasionally; those decode to the zero
// value and are skipped during normalization instead of failing the payload.
type payloadDescription struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (d *payloadDescription) UnmarshalJSON(b []byte) error {
	type plain payloadDescription
	var p plain
	if err := json.Unmarshal(b, &p); err == nil {
		*d = payloadDescription(p)
		return nil
	}
	*d = payloadDescription{}
	return nil
}
