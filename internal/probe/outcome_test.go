package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "server error: connection refused", ServerErrorOutcome("connection refused").String())
	assert.Equal(t, "token not found", TokenNotFoundOutcome().String())
	assert.Equal(t, "redirected 302 -> /staff/home", RedirectedOutcome(302, "/staff/home", true).String())
	assert.Equal(t, "redirected 303 (no Location)", RedirectedOutcome(303, "", false).String())
	assert.Equal(t, "http status 419", HTTPStatusOutcome(419).String())
	assert.Equal(t, "no redirect", NoRedirectOutcome().String())
}

func TestOutcome_StatusLabel(t *testing.T) {
	assert.Equal(t, "302", RedirectedOutcome(302, "/", true).StatusLabel())
	assert.Equal(t, "500", HTTPStatusOutcome(500).StatusLabel())
	assert.Equal(t, "no_redirect", NoRedirectOutcome().StatusLabel())
	assert.Equal(t, "token_not_found", TokenNotFoundOutcome().StatusLabel())
	assert.Equal(t, "server_error", ServerErrorOutcome("x").StatusLabel())
}

func TestOutcomeKind_StringUnknown(t *testing.T) {
	assert.Equal(t, "outcome(42)", OutcomeKind(42).String())
}

func TestRedirectedOutcome_KeepsLocationVerbatim(t *testing.T) {
	o := RedirectedOutcome(302, "../dashboard?x=1#frag", true)
	assert.Equal(t, "../dashboard?x=1#frag", o.Location)
	assert.True(t, o.HasLocation)
}
