package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
	"github.com/go-resty/resty/v2"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// cfg.ServerAddress and configures the underlying HTTP client with the
// resolved base URL and request timeout.
//
// Returns an error if cfg.ServerAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPServerAdapter(cfg config.AgentConfig, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(cfg.ServerAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token
// (whitespace-trimmed) for use in the Authorization header of all
// subsequent authenticated requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the user credentials to
// POST /api/user/register. On success the bearer token is extracted
// from the Authorization response header and stored via SetToken.
func (h *httpServerAdapter) Register(ctx context.Context, user models.User) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/user/register")
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

// Login implements [ServerAdapter]. It POSTs the credentials to
// POST /api/user/login. On success the bearer token is extracted from
// the Authorization response header and stored via SetToken.
func (h *httpServerAdapter) Login(ctx context.Context, user models.User) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/user/login")
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

// UploadPublicKey implements [ServerAdapter]. It POSTs the DER-encoded
// key to POST /api/user/publickey. Requires a valid bearer token.
func (h *httpServerAdapter) UploadPublicKey(ctx context.Context, publicKey []byte) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.UploadPublicKeyRequest{PublicKey: publicKey}).
		Post("/api/user/publickey")
	if err != nil {
		return fmt.Errorf("upload public key request: %w", err)
	}

	return mapHTTPError(resp)
}

// PollNotifications implements [ServerAdapter]. It GETs the long-poll
// endpoint GET /api/notifications and decodes the delivered batch. An
// HTTP 204 (server-side poll timeout) yields an empty batch and no
// error. Requires a valid bearer token.
func (h *httpServerAdapter) PollNotifications(ctx context.Context) ([]models.Notice, error) {
	resp, err := h.authedRequest(ctx).Get("/api/notifications")
	if err != nil {
		return nil, fmt.Errorf("poll notifications request: %w", err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var notices []models.Notice
	if err = json.Unmarshal(resp.Body(), &notices); err != nil {
		return nil, fmt.Errorf("decode notifications response: %w", err)
	}

	return notices, nil
}

// ReplayJobs implements [ServerAdapter]. It POSTs to
// POST /api/jobs/replay and returns the re-advertised job count.
// Requires a valid bearer token.
func (h *httpServerAdapter) ReplayJobs(ctx context.Context) (int, error) {
	resp, err := h.authedRequest(ctx).Post("/api/jobs/replay")
	if err != nil {
		return 0, fmt.Errorf("replay jobs request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var result struct {
		Replayed int `json:"replayed"`
	}
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, fmt.Errorf("decode replay response: %w", err)
	}

	return result.Replayed, nil
}

// GetMyCiphertext implements [ServerAdapter]. It GETs
// GET /api/secrets/{id}/ciphertext. Returns [ErrNotFound] (wrapped)
// when the agent's copy has not been produced yet. Requires a valid
// bearer token.
func (h *httpServerAdapter) GetMyCiphertext(ctx context.Context, secretID int64) (models.UserEncryptedSecret, error) {
	var ciphertext models.UserEncryptedSecret

	resp, err := h.authedRequest(ctx).
		SetResult(&ciphertext).
		Get(fmt.Sprintf("/api/secrets/%d/ciphertext", secretID))
	if err != nil {
		return models.UserEncryptedSecret{}, fmt.Errorf("get ciphertext request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserEncryptedSecret{}, err
	}

	return ciphertext, nil
}

// FulfillJob implements [ServerAdapter]. It POSTs the re-encrypted blob
// to POST /api/jobs/{token}/fulfill. Returns [ErrNotFound] (wrapped)
// when the job was already retired. Requires a valid bearer token.
func (h *httpServerAdapter) FulfillJob(ctx context.Context, token string, ciphertext []byte) (models.FulfillResponse, error) {
	var response models.FulfillResponse

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.FulfillRequest{EncryptedSecret: ciphertext}).
		SetResult(&response).
		Post(fmt.Sprintf("/api/jobs/%s/fulfill", url.PathEscape(token)))
	if err != nil {
		return models.FulfillResponse{}, fmt.Errorf("fulfill job request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.FulfillResponse{}, err
	}

	return response, nil
}

// authedRequest returns a request builder with the stored bearer token
// attached.
func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", h.token))
}
