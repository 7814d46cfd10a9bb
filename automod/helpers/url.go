package helpers

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

var trackingParams = []string{
	"__s",
	"_ga",
	"campaign_id",
	"fbclid",
	"gclid",
	"mc_eid",
	"msclkid",
	"share_id",
	"utm_campaign",
	"utm_content",
	"utm_id",
	"utm_medium",
	"utm_name",
	"utm_source",
	"utm_term",
}

// aggressively normalizes a URL for membership checks. The scheme is dropped, so "http://www.example.com/a/" and "example.com/a" compare equal. The result may not be a working URL.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	clean, err := purell.NormalizeURLString(raw, purell.FlagsUsuallySafeGreedy|purell.FlagRemoveDirectoryIndex|purell.FlagRemoveFragment|purell.FlagRemoveDuplicateSlashes|purell.FlagRemoveWWW|purell.FlagSortQuery)
	if err != nil {
		return strings.ToLower(raw)
	}

	u, err := url.Parse(clean)
	if err != nil {
		return clean
	}
	if u.RawQuery != "" {
		params := u.Query()
		for _, p := range trackingParams {
			params.Del(p)
		}
		u.RawQuery = params.Encode()
	}
	u.Scheme = ""
	return strings.TrimSuffix(strings.TrimPrefix(u.String(), "//"), "/")
}

// Returns the host part of a URL, without any "www." prefix. Empty if the URL has no host.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
