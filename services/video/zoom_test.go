package video

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the token and meeting endpoints and counts token requests.
func newTestServer(t *testing.T, tokenRequests *int, expiresIn int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		*tokenRequests++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok_1",
			"expires_in":   expiresIn,
		})
	})

	mux.HandleFunc("/users/me/meetings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok_1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":        87234,
			"topic":     "Live Q&A",
			"duration":  60,
			"join_url":  "https://example.test/j/87234",
			"start_url": "https://example.test/s/87234",
		})
	})

	mux.HandleFunc("/meetings/87234", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server) *ZoomClient {
	client := NewZoomClient("acc", "id", "secret")
	client.api.SetBaseURL(server.URL)
	client.auth.SetBaseURL(server.URL)
	return client
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	var tokenRequests int
	server := newTestServer(t, &tokenRequests, 3600)
	client := newTestClient(server)

	current := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return current }

	meeting, err := client.CreateMeeting("Live Q&A", current.Add(time.Hour), 60)
	require.NoError(t, err)
	assert.Equal(t, "87234", meeting.MeetingID())
	assert.Equal(t, "https://example.test/j/87234", meeting.JoinURL)

	_, err = client.CreateMeeting("Live Q&A", current.Add(2*time.Hour), 60)
	require.NoError(t, err)

	assert.Equal(t, 1, tokenRequests)
}

func TestTokenRefreshedWithinExpiryMargin(t *testing.T) {
	var tokenRequests int
	server := newTestServer(t, &tokenRequests, 3600)
	client := newTestClient(server)

	current := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return current }

	_, err := client.CreateMeeting("Session 1", current.Add(time.Hour), 60)
	require.NoError(t, err)
	require.Equal(t, 1, tokenRequests)

	// Just inside the cached window: no refresh.
	current = current.Add(3600*time.Second - tokenExpiryMargin - time.Second)
	_, err = client.CreateMeeting("Session 2", current.Add(time.Hour), 60)
	require.NoError(t, err)
	assert.Equal(t, 1, tokenRequests)

	// Within the safety margin of expiry: refresh.
	current = current.Add(2 * time.Second)
	_, err = client.CreateMeeting("Session 3", current.Add(time.Hour), 60)
	require.NoError(t, err)
	assert.Equal(t, 2, tokenRequests)
}

func TestDeleteMeeting(t *testing.T) {
	var tokenRequests int
	server := newTestServer(t, &tokenRequests, 3600)
	client := newTestClient(server)

	require.NoError(t, client.DeleteMeeting("87234"))

	// An already-deleted meeting is not an error.
	require.NoError(t, client.DeleteMeeting("404404"))
}
