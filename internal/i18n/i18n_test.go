package i18n

import (
	"testing"

	"agri_advisor/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		locale model.Locale
		key    Key
		params map[string]string
		want   string
	}{
		{"english", model.LocaleEnglish, KeyPasscodeExpired, nil, "OTP expired"},
		{"malayalam", model.LocaleMalayalam, KeyPasscodeMismatch, nil, "തെറ്റായ OTP"},
		{"falls back to english", model.LocaleMalayalam, KeyInternal, nil, "Something went wrong. Please try again."},
		{"unknown locale falls back to english", model.Locale("fr"), KeyInvalidCredentials, nil, "Invalid credentials"},
		{"missing key returns key", model.LocaleEnglish, Key("nope.missing"), nil, "nope.missing"},
		{"substitutes params", model.LocaleEnglish, KeyWelcome, map[string]string{"name": "Priya"}, "Welcome, Priya"},
		{"keeps unknown placeholder", model.LocaleEnglish, KeyWelcome, map[string]string{"other": "x"}, "Welcome, {{name}}"},
		{"empty param keeps placeholder", model.LocaleEnglish, KeyWelcome, map[string]string{"name": ""}, "Welcome, {{name}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.locale, tt.key, tt.params))
		})
	}
}

func TestEveryMalayalamKeyHasEnglish(t *testing.T) {
	for key := range catalog[model.LocaleMalayalam] {
		_, ok := catalog[model.LocaleEnglish][key]
		assert.True(t, ok, "missing english string for %s", key)
	}
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, model.LocaleEnglish, ParseLocale("en-US,en;q=0.9", model.LocaleMalayalam))
	assert.Equal(t, model.LocaleMalayalam, ParseLocale("ml-IN", model.LocaleEnglish))
	assert.Equal(t, model.LocaleMalayalam, ParseLocale("fr-FR, ml;q=0.5", model.LocaleEnglish))
	assert.Equal(t, model.LocaleEnglish, ParseLocale("", model.LocaleEnglish))
	assert.Equal(t, model.LocaleMalayalam, ParseLocale("de", model.LocaleMalayalam))
}
