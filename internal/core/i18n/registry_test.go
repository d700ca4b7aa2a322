package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistryDefaults(t *testing.T) {
	r := NewRegistry("", nil)
	assert.Equal(t, "en", r.DefaultLocale())
	assert.ElementsMatch(t, DefaultSupportedLocales, r.SupportedLocales())

	// Unsupported default falls back to en and en joins the set
	r = NewRegistry("xx", []string{"fr", "de"})
	assert.Equal(t, "en", r.DefaultLocale())
	assert.True(t, r.Supported("en"))
	assert.True(t, r.Supported("fr"))
	assert.False(t, r.Supported("xx"))
}

func TestNewRegistryNormalizes(t *testing.T) {
	r := NewRegistry("ar", []string{" AR ", "ar", "En", ""})
	assert.Equal(t, "ar", r.DefaultLocale())
	assert.Equal(t, []string{"ar", "en"}, r.SupportedLocales())
}

func TestLocaleForRegion(t *testing.T) {
	r := NewRegistry("en", nil)

	tests := []struct {
		name   string
		region string
		want   string
	}{
		{"saudi arabia", "sa", "ar"},
		{"uppercase country", "SA", "ar"},
		{"china", "cn", "zh"},
		{"france", "fr", "fr"},
		{"brazil", "br", "pt"},
		{"unknown region", "zz", "en"},
		{"empty region", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.LocaleForRegion(tt.region))
		})
	}
}

func TestLocaleForRegionUnsupportedFallsBack(t *testing.T) {
	// Registry without zh still resolves Chinese regions to the default
	r := NewRegistry("en", []string{"en", "fr"})
	assert.Equal(t, "en", r.LocaleForRegion("cn"))
}

func TestLocaleForTimezone(t *testing.T) {
	r := NewRegistry("en", nil)
	assert.Equal(t, "zh", r.LocaleForTimezone("Asia/Shanghai"))
	assert.Equal(t, "fr", r.LocaleForTimezone("Africa/Dakar"))
	assert.Equal(t, "en", r.LocaleForTimezone("Europe/Berlin"))
	assert.Equal(t, "en", r.LocaleForTimezone("UTC"))
	assert.Equal(t, "en", r.LocaleForTimezone(""))
}

func TestIsRTL(t *testing.T) {
	r := NewRegistry("en", nil)
	assert.True(t, r.IsRTL("ar"))
	assert.True(t, r.IsRTL("he"))
	assert.False(t, r.IsRTL("en"))
	assert.False(t, r.IsRTL(""))
}

func TestDeviceLocale(t *testing.T) {
	r := NewRegistry("en", nil)

	t.Setenv("LANG", "fr_FR.UTF-8")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANGUAGE", "")
	assert.Equal(t, "fr", r.DeviceLocale())

	t.Setenv("LANG", "")
	assert.Equal(t, "", r.DeviceLocale())

	// Unsupported device language is not reported
	t.Setenv("LANG", "xx_XX.UTF-8")
	assert.Equal(t, "", r.DeviceLocale())
}

func TestPrimarySubtag(t *testing.T) {
	assert.Equal(t, "en", primarySubtag("en_US.UTF-8"))
	assert.Equal(t, "zh", primarySubtag("zh-CN"))
	assert.Equal(t, "ar", primarySubtag(" AR "))
	assert.Equal(t, "fr", primarySubtag("fr"))
}

func TestOptions(t *testing.T) {
	r := NewRegistry("en", []string{"en", "ar"})
	opts := r.Options()

	assert.Len(t, opts, 2)
	assert.Equal(t, "en", opts[0].Code)
	assert.Equal(t, "English", opts[0].Name)
	assert.False(t, opts[0].RTL)
	assert.Equal(t, "ar", opts[1].Code)
	assert.Equal(t, "Arabic", opts[1].Name)
	assert.True(t, opts[1].RTL)
	assert.NotEmpty(t, opts[1].NativeName)
}
