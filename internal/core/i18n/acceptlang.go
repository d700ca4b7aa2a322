package i18n

import (
	"sort"
	"strconv"
	"strings"
)

type weightedLang struct {
	tag    string
	weight float64
}

// BrowserLocale parses an Accept-Language header value and returns the
// highest-weighted supported locale, or "" when nothing matches. Both
// the full tag ("en-US") and its primary subtag ("en") are checked.
func (r *Registry) BrowserLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}

	langs := make([]weightedLang, 0, 4)
	for _, entry := range strings.Split(acceptLanguage, ",") {
		parts := strings.Split(entry, ";")
		tag := strings.TrimSpace(parts[0])
		if tag == "" {
			continue
		}

		weight := 1.0
		if len(parts) > 1 {
			q := strings.TrimSpace(parts[1])
			if strings.HasPrefix(q, "q=") {
				if v, err := strconv.ParseFloat(q[2:], 64); err == nil {
					weight = v
				}
				// malformed q keeps the default 1.0
			}
		}
		langs = append(langs, weightedLang{tag: tag, weight: weight})
	}

	sort.SliceStable(langs, func(i, j int) bool {
		return langs[i].weight > langs[j].weight
	})

	for _, l := range langs {
		for _, candidate := range []string{primarySubtag(l.tag), strings.ToLower(l.tag)} {
			if r.Supported(candidate) {
				return candidate
			}
		}
	}
	return ""
}
