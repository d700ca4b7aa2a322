package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultSupportedLocales is used when the configuration does not name
// an explicit set.
var DefaultSupportedLocales = []string{
	"ar", "en", "fr", "es", "de", "zh", "ja", "ko", "ru", "pt", "it", "hi",
	"tr", "th", "vi", "nl", "sv", "pl", "uk", "id", "he", "fa", "ur", "el",
}

// rtlLocales are written right-to-left.
var rtlLocales = map[string]bool{
	"ar": true, "he": true, "fa": true, "ur": true, "ps": true, "yi": true,
}

// regionLocales maps a regional default locale to the ISO 3166-1
// alpha-2 country codes it covers. Pure data, many-to-one.
var regionLocales = map[string][]string{
	"ar": {"sa", "ae", "eg", "jo", "lb", "sy", "iq", "ye", "om", "qa", "bh", "kw", "ps", "tr", "cy", "az", "ge", "am", "il"},
	"zh": {"cn", "hk", "mo", "tw"},
	"hi": {"in", "pk", "bd", "np", "lk", "mv", "bt"},
	"fr": {"fr", "mc", "cd", "ci", "mg", "ne", "bj", "bf", "sn", "tg", "ga", "ml", "mu"},
	"de": {"de", "at", "li", "nl"},
	"es": {"es", "mx", "ar", "co", "pe", "ve", "gt", "cr", "pa", "ec", "bo", "py", "sv", "hn", "ni", "do", "pr", "cu"},
	"en": {"gb", "ie", "us", "ca", "au", "nz", "za", "zw", "ng", "ke", "gh", "tz", "ug", "zm", "bw", "na", "sz", "mw", "ls"},
	"ru": {"ru", "ua", "by", "kz", "kg", "tm", "uz", "pl", "cz", "sk", "hu", "ro", "bg", "hr", "rs", "me", "ba", "al", "mk", "gr"},
	"pt": {"pt", "br", "ao", "mz", "cv", "gw", "st", "tl", "gq", "gm"},
	"it": {"it", "va", "sm", "mt", "si"},
	"sv": {"fi", "se", "no", "dk", "fo", "is", "ax"},
	"ja": {"jp", "kr", "kp"},
	"th": {"th", "kh", "la", "vn", "mm", "id", "ph", "sg", "my", "bn"},
}

// timezoneAreaLocales maps IANA timezone areas to a regional default.
var timezoneAreaLocales = map[string]string{
	"America":    "en",
	"Europe":     "en",
	"Asia":       "zh",
	"Africa":     "fr",
	"Pacific":    "en",
	"Indian":     "hi",
	"Atlantic":   "en",
	"Australia":  "en",
	"Antarctica": "en",
}

// LocaleOption describes one supported locale for client display.
type LocaleOption struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	RTL        bool   `json:"rtl"`
}

// Registry is the static catalog of supported locales, the default
// locale and region mapping tables. Locale codes never leave the core
// unless they are members of this registry.
type Registry struct {
	defaultLocale string
	supported     []string
	supportedSet  map[string]bool
}

// NewRegistry builds a registry from configuration. An unsupported or
// empty default falls back to "en"; an empty supported list falls back
// to DefaultSupportedLocales.
func NewRegistry(defaultLocale string, supported []string) *Registry {
	if len(supported) == 0 {
		supported = DefaultSupportedLocales
	}

	set := make(map[string]bool, len(supported))
	codes := make([]string, 0, len(supported))
	for _, code := range supported {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || set[code] {
			continue
		}
		set[code] = true
		codes = append(codes, code)
	}

	if defaultLocale == "" || !set[defaultLocale] {
		defaultLocale = "en"
		if !set["en"] {
			set["en"] = true
			codes = append(codes, "en")
		}
	}

	return &Registry{
		defaultLocale: defaultLocale,
		supported:     codes,
		supportedSet:  set,
	}
}

// DefaultLocale returns the registry default.
func (r *Registry) DefaultLocale() string {
	return r.defaultLocale
}

// SupportedLocales returns the supported locale codes.
func (r *Registry) SupportedLocales() []string {
	out := make([]string, len(r.supported))
	copy(out, r.supported)
	return out
}

// Supported reports whether code is a member of the registry.
func (r *Registry) Supported(code string) bool {
	return r.supportedSet[code]
}

// IsRTL reports whether the locale is written right-to-left.
func (r *Registry) IsRTL(code string) bool {
	return rtlLocales[code]
}

// LocaleForRegion maps an ISO country code to its regional default
// locale. Unknown or empty regions map to the registry default.
func (r *Registry) LocaleForRegion(region string) string {
	if region == "" {
		return r.defaultLocale
	}
	region = strings.ToLower(region)

	for locale, countries := range regionLocales {
		for _, c := range countries {
			if c == region {
				if r.Supported(locale) {
					return locale
				}
				return r.defaultLocale
			}
		}
	}
	return r.defaultLocale
}

// LocaleForTimezone maps an IANA timezone name ("Europe/Berlin") to a
// regional default locale by its area prefix.
func (r *Registry) LocaleForTimezone(tz string) string {
	area, _, found := strings.Cut(tz, "/")
	if !found {
		return r.defaultLocale
	}
	if locale, ok := timezoneAreaLocales[area]; ok && r.Supported(locale) {
		return locale
	}
	return r.defaultLocale
}

// DeviceLocale returns the host system language from environment
// variables, reduced to its primary subtag, or "" when nothing usable
// is set.
func (r *Registry) DeviceLocale() string {
	for _, env := range []string{"LANG", "LC_ALL", "LC_MESSAGES", "LANGUAGE"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if code := primarySubtag(val); r.Supported(code) {
			return code
		}
	}
	return ""
}

// Options lists all supported locales with English display name,
// native name and RTL flag.
func (r *Registry) Options() []LocaleOption {
	opts := make([]LocaleOption, 0, len(r.supported))
	for _, code := range r.supported {
		opts = append(opts, LocaleOption{
			Code:       code,
			Name:       displayName(code),
			NativeName: nativeName(code),
			RTL:        rtlLocales[code],
		})
	}
	return opts
}

func displayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

func nativeName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// primarySubtag reduces a locale string ("en_US.UTF-8", "zh-CN") to
// its language code.
func primarySubtag(locale string) string {
	if idx := strings.Index(locale, "."); idx != -1 {
		locale = locale[:idx]
	}
	locale = strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(locale, "_-"); idx != -1 {
		locale = locale[:idx]
	}
	return locale
}
