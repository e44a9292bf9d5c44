package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 200
	MaxPostBodyLength    = 20000
	MaxCommentLength     = 5000
	MaxTeamNameLength    = 100
	MaxProjectNameLength = 120
	MaxMediaURLs         = 10
)

// RequireText trims s and rejects blank or over-long values.
func RequireText(field, s string, maxLen int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(s) > maxLen {
		return "", fmt.Errorf("%s must not exceed %d characters", field, maxLen)
	}
	return s, nil
}

// ValidateURL accepts absolute http(s) URLs. Empty is allowed.
func ValidateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL", field)
	}
	return nil
}

// ValidateMediaURLs checks an already-normalized media list.
func ValidateMediaURLs(urls []string) error {
	if len(urls) > MaxMediaURLs {
		return fmt.Errorf("at most %d media URLs are allowed", MaxMediaURLs)
	}
	for _, u := range urls {
		if err := ValidateURL("media_url", u); err != nil {
			return err
		}
	}
	return nil
}
