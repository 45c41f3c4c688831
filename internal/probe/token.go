package probe

import "regexp"

const TokenField = "_token"

var tokenPattern = regexp.MustCompile(`name="_token" value="([^"]+)"`)

// ExtractToken returns the value of the first `_token` hidden field in body.
// Later matches are ignored.
func ExtractToken(body string) (string, bool) {
	m := tokenPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}
