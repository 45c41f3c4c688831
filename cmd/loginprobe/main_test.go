package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_DefaultAccounts(t *testing.T) {
	server, posts := newRoleApp(t)

	out, err := execute(t, "--base-url", server.URL)
	require.NoError(t, err)

	assert.Equal(t, ""+
		"Testing Redirects...\n"+
		"User: staff@sales.local -> Status: 302, Location: /staff/home\n"+
		"User: manager@sales.local -> Status: 302, Location: /manager/dashboard\n",
		out)
	assert.Equal(t, int32(2), posts.Load())
}

func TestRunCommand_ExpectationMismatchFails(t *testing.T) {
	server, _ := newRoleApp(t)
	path := writeFile(t, "accounts.yaml", `
credentials:
  - email: staff@sales.local
    password: password123
    expect_location: /staff/home
  - email: manager@sales.local
    password: password123
    expect_location: /staff/home
`)

	out, err := execute(t, "run", "--base-url", server.URL, "--credentials", path)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 accounts failed", err.Error())
	assert.Contains(t, out, "[MISMATCH: expected redirect to /staff/home, got /manager/dashboard]")
}

func TestRunCommand_StrictFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	out, err := execute(t, "run", "--base-url", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: server_error")

	_, err = execute(t, "run", "--strict", "--base-url", addr, "--timeout", "500ms")
	require.Error(t, err)
	assert.Equal(t, "2 of 2 accounts failed", err.Error())
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--base-url", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base URL")

	_, err = execute(t, "run", "--credentials", "/definitely/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read credentials file")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "loginprobe dev (commit: none)\n", out)
}

func TestWatchCommand_RejectsBadInterval(t *testing.T) {
	_, err := execute(t, "watch", "--interval", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}
