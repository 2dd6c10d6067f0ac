// Package pagespeed talks to the Google PageSpeed Insights v5 API and maps
// its responses into vitals records.
package pagespeed

import (
	"errors"
	"os"
)

// placeholder shipped in the sample env file; treated the same as no key.
const placeholderAPIKey = "your_api_key_here"

var ErrNotConfigured = errors.New(
	"pagespeed api key not configured, set PAGESPEED_INSIGHTS_API_KEY " +
		"(see https://developers.google.com/speed/docs/insights/v5/get-started)")

// AuthProvider resolves the API key used on every request.
type AuthProvider struct {
	apiKey string
}

// NewAuthProvider uses the given key, falling back to the
// PAGESPEED_INSIGHTS_API_KEY environment variable when empty.
func NewAuthProvider(apiKey string) *AuthProvider {
	if apiKey == "" {
		apiKey = os.Getenv("PAGESPEED_INSIGHTS_API_KEY")
	}
	return &AuthProvider{apiKey: apiKey}
}

func (a *AuthProvider) APIKey() (string, error) {
	if !a.IsConfigured() {
		return "", ErrNotConfigured
	}
	return a.apiKey, nil
}

// IsConfigured reports whether a usable key is present, for pre-flight checks.
func (a *AuthProvider) IsConfigured() bool {
	return a.apiKey != "" && a.apiKey != placeholderAPIKey
}
