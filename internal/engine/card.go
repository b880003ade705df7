package engine

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// PatientCard renders the profile as a vCard 4.0 for the caregiver feed.
// The disease goes in NOTE and the photo, already a data URL, in PHOTO.
func PatientCard(p UserProfile) ([]byte, error) {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, config.VCardVersion)

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = config.FallbackName
	}
	card.SetValue(vcard.FieldFormattedName, name)
	card.SetName(&vcard.Name{GivenName: name})

	if d := strings.TrimSpace(p.Disease); d != "" {
		card.SetValue(vcard.FieldNote, d)
	}
	if bday, err := time.Parse(config.DateFormatBirth, p.BirthDate); err == nil {
		card.SetValue(vcard.FieldBirthday, bday.Format(config.DateFormatVCard))
	}
	if p.ProfileImage != "" {
		card.SetValue(vcard.FieldPhoto, p.ProfileImage)
	}

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
	}
	return buf.Bytes(), nil
}
