package sharelink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/career-advisor/internal/types"
)

// ParamName is the query parameter carrying a share token.
const ParamName = "analysis"

// ShareURL returns base (origin and path only) with the result's token as the
// only query parameter.
func (c *Codec) ShareURL(base string, result *types.AnalysisResult) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid share base URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("share base URL %q must be absolute", base)
	}

	token, err := c.Encode(result)
	if err != nil {
		return "", err
	}

	u.RawQuery = url.Values{ParamName: []string{token}}.Encode()
	u.Fragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// ShareURL builds a share URL with the default codec.
func ShareURL(base string, result *types.AnalysisResult) (string, error) {
	return defaultCodec.ShareURL(base, result)
}

// TokenFromQuery returns the share token and whether one is present.
// An empty parameter counts as absent.
func TokenFromQuery(values url.Values) (string, bool) {
	token := values.Get(ParamName)
	if token == "" {
		return "", false
	}
	return token, true
}

// TokenFromURL extracts a token from either a full share URL or a bare token.
func TokenFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "?") && !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	token, _ := TokenFromQuery(u.Query())
	return token
}

// StripToken returns the address to show once a token has been consumed:
// the path alone, so a reload starts from the welcome state.
func StripToken(u *url.URL) string {
	if u == nil || u.Path == "" {
		return "/"
	}
	return u.EscapedPath()
}
