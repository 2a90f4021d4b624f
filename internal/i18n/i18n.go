// Package i18n looks up user-facing strings for the supported locales.
//
// Lookup tries the requested locale, then English, then returns the key
// itself. Placeholders of the form {{name}} are filled from params; unknown
// placeholders are left as written.
package i18n

import (
	"regexp"
	"strings"

	"agri_advisor/internal/model"
)

// Key identifies a translatable string.
type Key string

const (
	KeyPasscodeSent       Key = "auth.otpSent"
	KeyPasscodeNotFound   Key = "auth.errors.otpNotFound"
	KeyPasscodeExpired    Key = "auth.errors.otpExpired"
	KeyPasscodeMismatch   Key = "auth.errors.invalidOtp"
	KeyInvalidCredentials Key = "auth.errors.invalidCredentials"
	KeyPhoneRequired      Key = "auth.errors.phoneRequired"
	KeyInvalidRequest     Key = "errors.invalidRequest"
	KeyUnauthorized       Key = "errors.unauthorized"
	KeyForbidden          Key = "errors.forbidden"
	KeyProfileIncomplete  Key = "profile.incomplete"
	KeyProfileUpdated     Key = "profile.updated"
	KeyUserNotFound       Key = "errors.userNotFound"
	KeyInternal           Key = "errors.internal"
	KeyLoginSuccess       Key = "auth.loginSuccess"
	KeyLoggedOut          Key = "auth.loggedOut"
	KeyWelcome            Key = "dashboard.welcome"
)

var catalog = map[model.Locale]map[Key]string{
	model.LocaleEnglish: {
		KeyPasscodeSent:       "A verification code has been sent to {{phone}}",
		KeyPasscodeNotFound:   "OTP not found or expired",
		KeyPasscodeExpired:    "OTP expired",
		KeyPasscodeMismatch:   "Invalid OTP",
		KeyInvalidCredentials: "Invalid credentials",
		KeyPhoneRequired:      "Please enter your mobile number",
		KeyInvalidRequest:     "Invalid request",
		KeyUnauthorized:       "Please sign in to continue",
		KeyForbidden:          "You do not have permission to access this resource",
		KeyProfileIncomplete:  "Please complete your profile to continue",
		KeyProfileUpdated:     "Profile updated",
		KeyUserNotFound:       "User not found",
		KeyInternal:           "Something went wrong. Please try again.",
		KeyLoginSuccess:       "Signed in successfully",
		KeyLoggedOut:          "You have been signed out",
		KeyWelcome:            "Welcome, {{name}}",
	},
	model.LocaleMalayalam: {
		KeyPasscodeSent:       "{{phone}} എന്ന നമ്പറിലേക്ക് സ്ഥിരീകരണ കോഡ് അയച്ചു",
		KeyPasscodeNotFound:   "OTP കണ്ടെത്തിയില്ല അല്ലെങ്കിൽ കാലഹരണപ്പെട്ടു",
		KeyPasscodeExpired:    "OTP കാലഹരണപ്പെട്ടു",
		KeyPasscodeMismatch:   "തെറ്റായ OTP",
		KeyInvalidCredentials: "തെറ്റായ വിവരങ്ങൾ",
		KeyPhoneRequired:      "നിങ്ങളുടെ മൊബൈൽ നമ്പർ നൽകുക",
		KeyUnauthorized:       "തുടരാൻ ലോഗിൻ ചെയ്യുക",
		KeyProfileIncomplete:  "തുടരാൻ നിങ്ങളുടെ പ്രൊഫൈൽ പൂർത്തിയാക്കുക",
		KeyProfileUpdated:     "പ്രൊഫൈൽ അപ്ഡേറ്റ് ചെയ്തു",
		KeyLoginSuccess:       "വിജയകരമായി ലോഗിൻ ചെയ്തു",
		KeyLoggedOut:          "നിങ്ങൾ ലോഗൗട്ട് ചെയ്തു",
		KeyWelcome:            "സ്വാഗതം, {{name}}",
	},
}

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Translate returns the string for key in locale.
func Translate(locale model.Locale, key Key, params map[string]string) string {
	value, ok := lookup(locale, key)
	if !ok {
		return string(key)
	}
	if len(params) == 0 {
		return value
	}
	return placeholder.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := params[name]; ok && v != "" {
			return v
		}
		return match
	})
}

func lookup(locale model.Locale, key Key) (string, bool) {
	if v, ok := catalog[locale][key]; ok {
		return v, true
	}
	v, ok := catalog[model.LocaleEnglish][key]
	return v, ok
}

// ParseLocale picks a supported locale from a language tag or an
// Accept-Language header value. It falls back to def.
func ParseLocale(value string, def model.Locale) model.Locale {
	for _, part := range strings.Split(value, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(tag, ";-_"); i >= 0 {
			tag = tag[:i]
		}
		if l := model.Locale(tag); l.Valid() {
			return l
		}
	}
	return def
}
