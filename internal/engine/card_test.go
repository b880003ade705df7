package engine_test

import (
	"bytes"
	"testing"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

func TestPatientCard(t *testing.T) {
	data, err := engine.PatientCard(engine.UserProfile{
		Name:         "Somchai",
		Disease:      "Type 2 diabetes",
		BirthDate:    "1950-03-01",
		ProfileImage: config.ProfilePhotoPrefix + "AAAA",
	})
	require.NoError(t, err)

	card, err := vcard.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	assert.Equal(t, config.VCardVersion, card.Value(vcard.FieldVersion))
	assert.Equal(t, "Somchai", card.Value(vcard.FieldFormattedName))
	assert.Equal(t, "Type 2 diabetes", card.Value(vcard.FieldNote))
	assert.Equal(t, "19500301", card.Value(vcard.FieldBirthday))
	assert.Equal(t, config.ProfilePhotoPrefix+"AAAA", card.Value(vcard.FieldPhoto))
}

func TestPatientCard_BlankProfile(t *testing.T) {
	data, err := engine.PatientCard(engine.UserProfile{BirthDate: "not a date"})
	require.NoError(t, err)

	card, err := vcard.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	assert.Equal(t, config.FallbackName, card.Value(vcard.FieldFormattedName))
	assert.Empty(t, card.Value(vcard.FieldBirthday))
	assert.Empty(t, card.Value(vcard.FieldNote))
}
