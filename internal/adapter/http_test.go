package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

func newTestAdapter(t *testing.T, handler http.Handler) ServerAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.AgentConfig{ServerAddress: srv.URL, RequestTimeout: 5 * time.Second}
	a, err := NewHTTPServerAdapter(cfg, logger.Nop())
	require.NoError(t, err)

	return a
}

func TestNewHTTPServerAdapter_RejectsEmptyAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.AgentConfig{}, logger.Nop())
	assert.Error(t, err)
}

func TestLogin_StoresBearerToken(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/login", r.URL.Path)
		w.Header().Set("Authorization", "Bearer issued-token")
		w.WriteHeader(http.StatusOK)
	}))

	err := a.Login(context.Background(), models.User{Login: "agent", AuthHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "issued-token", a.Token())
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong password", http.StatusUnauthorized)
	}))

	err := a.Login(context.Background(), models.User{Login: "agent", AuthHash: "bad"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUploadPublicKey_SendsDERBlob(t *testing.T) {
	var got models.UploadPublicKeyRequest
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/publickey", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	a.SetToken("tok")

	err := a.UploadPublicKey(context.Background(), []byte("der-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("der-bytes"), got.PublicKey)
}

func TestPollNotifications_EmptyOnTimeout(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	a.SetToken("tok")

	notices, err := a.PollNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notices)
}

func TestPollNotifications_DecodesBatch(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch := []models.Notice{
			{Topic: models.TopicJobAdvertised, Payload: map[string]any{"token": "tok-1"}},
			{Topic: models.TopicJobAborted, Payload: map[string]any{"token": "tok-0"}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(batch)
	}))
	a.SetToken("tok")

	notices, err := a.PollNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, notices, 2)
	assert.Equal(t, models.TopicJobAdvertised, notices[0].Topic)
}

func TestReplayJobs_ReturnsCount(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/jobs/replay", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"replayed": 4}`))
	}))
	a.SetToken("tok")

	replayed, err := a.ReplayJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, replayed)
}

func TestGetMyCiphertext_RoundTrip(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/secrets/42/ciphertext", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.UserEncryptedSecret{
			SecretID:   42,
			UserID:     7,
			Ciphertext: []byte("blob"),
		})
	}))
	a.SetToken("tok")

	ciphertext, err := a.GetMyCiphertext(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ciphertext.SecretID)
	assert.Equal(t, []byte("blob"), ciphertext.Ciphertext)
}

func TestFulfillJob_RetiredJobNotFound(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "job is not found", http.StatusNotFound)
	}))
	a.SetToken("tok")

	_, err := a.FulfillJob(context.Background(), "tok-gone", []byte("late"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFulfillJob_SubmitsCiphertext(t *testing.T) {
	var got models.FulfillRequest
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/jobs/tok-9/fulfill", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "fulfilled"}`))
	}))
	a.SetToken("tok")

	response, err := a.FulfillJob(context.Background(), "tok-9", []byte("re-encrypted"))
	require.NoError(t, err)
	assert.Equal(t, "fulfilled", response.Status)
	assert.Equal(t, []byte("re-encrypted"), got.EncryptedSecret)
}
