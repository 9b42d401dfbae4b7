package server

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionTokenRe = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestRegister(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedKey    string
	}{
		{
			name:           "Success",
			body:           map[string]string{"username": "alice", "password": "secret"},
			expectedStatus: http.StatusOK,
			expectedKey:    "status",
		},
		{
			name:           "Duplicate username",
			body:           map[string]string{"username": "alice", "password": "other"},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "error",
		},
		{
			name:           "Missing username",
			body:           map[string]string{"password": "secret"},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "error",
		},
		{
			name:           "Missing password",
			body:           map[string]string{"username": "bob"},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/register", tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Contains(t, body, tt.expectedKey)
		})
	}
}

func TestRegister_DuplicateMessage(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/register",
		map[string]string{"username": "carol", "password": "pw"})
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, app, http.MethodPost, "/register",
		map[string]string{"username": "carol", "password": "different"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already registered", body["error"])
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/register",
		map[string]string{"username": "dave", "password": "hunter2"})
	require.Equal(t, http.StatusOK, status)

	t.Run("Success", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/login",
			map[string]string{"username": "dave", "password": "hunter2"})
		assert.Equal(t, http.StatusOK, status)
		token, ok := body["session_id"].(string)
		require.True(t, ok)
		assert.Regexp(t, sessionTokenRe, token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/login",
			map[string]string{"username": "dave", "password": "wrong"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Incorrect username or password", body["error"])
	})

	// Unknown usernames answer identically to wrong passwords so callers
	// cannot probe which usernames exist.
	t.Run("Unknown username", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/login",
			map[string]string{"username": "nobody", "password": "hunter2"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Incorrect username or password", body["error"])
	})
}

func TestLogin_ReplacesPriorSession(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/register",
		map[string]string{"username": "erin", "password": "pw"})
	require.Equal(t, http.StatusOK, status)

	login := func() string {
		status, body := doJSON(t, app, http.MethodPost, "/login",
			map[string]string{"username": "erin", "password": "pw"})
		require.Equal(t, http.StatusOK, status)
		return body["session_id"].(string)
	}

	first := login()
	second := login()
	require.NotEqual(t, first, second)

	// The first token no longer resolves.
	status, body := doJSON(t, app, http.MethodPost, "/get_posts",
		map[string]string{"session_id": first})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid session_id", body["error"])

	// The second one does.
	status, _ = doJSON(t, app, http.MethodPost, "/get_posts",
		map[string]string{"session_id": second})
	assert.Equal(t, http.StatusOK, status)
}

func TestRegister_InvalidBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := newRawRequest(t, http.MethodPost, "/register", "{not json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
