package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTimeout bounds every API call. On expiry the call is reported as
// ErrUnavailable: a timed-out request must not be treated differently from
// an unreachable network.
const DefaultTimeout = 12 * time.Second

// RESTClient is the HTTP implementation of Gateway against the
// field-operations backend.
type RESTClient struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
	actorID      string
}

// NewRESTClient builds a gateway for the given base URL, e.g.
// "https://api.example.com".
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Close releases client resources. The underlying http.Client holds no
// connections worth draining, so this only exists to satisfy Gateway.
func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// SetTokens installs previously cached credentials (offline-restored
// session). The actor id is re-derived from the access token.
func (c *RESTClient) SetTokens(accessToken, refreshToken string) error {
	actorID, err := actorIDFromToken(accessToken)
	if err != nil {
		return err
	}
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.actorID = actorID
	return nil
}

// Tokens returns the current access and refresh tokens for local caching.
func (c *RESTClient) Tokens() (string, string) {
	return c.accessToken, c.refreshToken
}

// ActorID returns the technician id parsed from the bearer token, or "" when
// not logged in.
func (c *RESTClient) ActorID() string {
	return c.actorID
}

// HasCredential reports whether a bearer credential is available.
func (c *RESTClient) HasCredential() bool {
	return c.accessToken != ""
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates and returns the actor id carried in the token's
// subject claim. The token is not verified client-side; verification is the
// server's job, the client only needs "who am I".
func (c *RESTClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}
	if err := c.SetTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return "", err
	}
	return c.actorID, nil
}

func actorIDFromToken(accessToken string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", common.ErrInvalidToken
	}
	return sub, nil
}

func (c *RESTClient) refresh(ctx context.Context) error {
	if c.refreshToken == "" {
		return common.ErrUnauthorized
	}
	var resp tokenResponse
	body := map[string]string{"refresh_token": c.refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", body, &resp, false); err != nil {
		return err
	}
	return c.SetTokens(resp.AccessToken, resp.RefreshToken)
}

// Ping checks server liveness.
func (c *RESTClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil, false)
}

// ListAssigned returns the technician's work list.
func (c *RESTClient) ListAssigned(ctx context.Context) ([]models.AssignedRecord, error) {
	var out struct {
		Records []models.AssignedRecord `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/records?assigned=1", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Fetch returns one record's full server-side state.
func (c *RESTClient) Fetch(ctx context.Context, recordID string) (*models.RemoteRecord, error) {
	var out models.RemoteRecord
	if err := c.do(ctx, http.MethodGet, "/api/records/"+recordID, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

type createResponse struct {
	ID string `json:"id"`
}

// Create posts a new record and returns its id.
func (c *RESTClient) Create(ctx context.Context, payload models.Payload) (string, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/api/records", payload, &out, true); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("create returned no record id")
	}
	return out.ID, nil
}

// Update replaces a whole record.
func (c *RESTClient) Update(ctx context.Context, recordID string, payload models.Payload) error {
	return c.do(ctx, http.MethodPatch, "/api/records/"+recordID, payload, nil, true)
}

// PatchSection updates one section of a record.
func (c *RESTClient) PatchSection(ctx context.Context, recordID, checkKey string, section map[string]json.RawMessage) error {
	path := fmt.Sprintf("/api/records/%s/checks/%s", recordID, checkKey)
	return c.do(ctx, http.MethodPatch, path, section, nil, true)
}

type mediaBatchRequest struct {
	Items []MediaItem `json:"items"`
}

type mediaBatchResponse struct {
	URLs []string `json:"urls"`
}

// UploadMedia sends one ordered batch and returns the durable URLs in the
// same order. A count mismatch is an error: partial success must not look
// like success.
func (c *RESTClient) UploadMedia(ctx context.Context, items []MediaItem) ([]string, error) {
	var out mediaBatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/media/batch", mediaBatchRequest{Items: items}, &out, true); err != nil {
		return nil, err
	}
	if len(out.URLs) != len(items) {
		return nil, fmt.Errorf("media batch returned %d urls for %d items", len(out.URLs), len(items))
	}
	return out.URLs, nil
}

// do performs one JSON request. With auth set it sends the bearer token and,
// on a token-expired rejection, refreshes once and retries.
func (c *RESTClient) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	err := c.doOnce(ctx, method, path, in, out, auth)
	if err == nil || !auth {
		return err
	}
	if !errors.Is(err, common.ErrTokenExpired) || c.refreshToken == "" {
		return err
	}
	if err := c.refresh(ctx); err != nil {
		return err
	}
	return c.doOnce(ctx, method, path, in, out, auth)
}

func (c *RESTClient) doOnce(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth && c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport-level failure or timeout: no response was obtained.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// mapStatus translates server response codes into the sentinel errors the
// core branches on.
func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var er errorResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(b, &er)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusUnauthorized:
		if er.Error == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return common.ErrUnauthorized
	case http.StatusForbidden:
		return common.ErrOwnershipRejected
	default:
		msg := er.Error
		if msg == "" {
			msg = strings.TrimSpace(string(b))
		}
		return fmt.Errorf("server returned %s: %s", resp.Status, msg)
	}
}
