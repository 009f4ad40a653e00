// Package slack delivers per-recipient messages through the Slack Web API,
// keyed by username.
//
// An Account moves through three states: unauthenticated (no token),
// authenticated (token set, caches empty), and resolved (roster caches
// populated). Username-to-ID and username-to-DM-channel mappings are resolved
// lazily on first use, cached for the account's lifetime, and guarded by a
// single-flight group so concurrent first callers share one API request.
package slack

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the Slack Web API root.
const DefaultBaseURL = "https://slack.com/api"

// Account holds a bearer token and the cached workspace roster mappings.
type Account struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu         sync.Mutex
	userIDs    map[string]string // username -> internal user ID
	dmChannels map[string]string // username -> DM channel ID
	flight     singleflight.Group
}

// Option configures an Account.
type Option func(*Account)

// WithToken sets the API token at construction time.
func WithToken(token string) Option {
	return func(a *Account) { a.token = token }
}

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(a *Account) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the underlying HTTP client. The bearer token is still
// injected by the oauth2 transport on top of it.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Account) { a.httpClient = c }
}

// WithLogger sets the logger for per-send outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(a *Account) { a.logger = l }
}

// NewAccount creates an account. Without WithToken it starts
// unauthenticated; call SetToken or SetTokenFromFile before resolving.
func NewAccount(opts ...Option) *Account {
	a := &Account{
		baseURL: DefaultBaseURL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetToken sets the API token.
func (a *Account) SetToken(token string) {
	a.token = token
}

// SetTokenFromFile reads the first line of r verbatim as the API token. The
// token format is not validated.
func (a *Account) SetTokenFromFile(r io.Reader) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read token: %w", err)
	}
	a.token = strings.TrimRight(line, "\r\n")
	return nil
}

// UserIDs returns the mapping from username to internal user ID, listing all
// workspace users on first call and serving the cache afterwards. The result
// is a copy; mutating it does not affect the cache.
func (a *Account) UserIDs(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	cached := a.userIDs
	a.mu.Unlock()
	if cached != nil {
		return maps.Clone(cached), nil
	}

	v, err, _ := a.flight.Do("users", func() (any, error) {
		return a.resolveUserIDs(ctx)
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(v.(map[string]string)), nil
}

func (a *Account) resolveUserIDs(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	if a.userIDs != nil {
		cached := a.userIDs
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	var resp struct {
		apiResponse
		Members []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"members"`
	}
	if err := a.post(ctx, "users.list", nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.callErr("users.list"); err != nil {
		return nil, err
	}
	if resp.Members == nil {
		return nil, fmt.Errorf("%w: users.list response has no members", ErrProtocol)
	}

	ids := make(map[string]string, len(resp.Members))
	for _, m := range resp.Members {
		if m.Name == "" || m.ID == "" {
			return nil, fmt.Errorf("%w: users.list member missing name or id", ErrProtocol)
		}
		ids[m.Name] = m.ID
	}

	a.mu.Lock()
	a.userIDs = ids
	a.mu.Unlock()
	return ids, nil
}

// DMChannels returns the mapping from username to direct message channel ID.
// It resolves user IDs first (their mapping keys this one), then lists DM
// conversations once and serves the cache afterwards. Users without an open
// DM channel are absent from the result. The result is a copy; mutating it
// does not affect the cache.
func (a *Account) DMChannels(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	cached := a.dmChannels
	a.mu.Unlock()
	if cached != nil {
		return maps.Clone(cached), nil
	}

	// users.list must populate its cache before conversations.list runs.
	users, err := a.UserIDs(ctx)
	if err != nil {
		return nil, err
	}

	v, err, _ := a.flight.Do("channels", func() (any, error) {
		return a.resolveDMChannels(ctx, users)
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(v.(map[string]string)), nil
}

func (a *Account) resolveDMChannels(ctx context.Context, users map[string]string) (map[string]string, error) {
	a.mu.Lock()
	if a.dmChannels != nil {
		cached := a.dmChannels
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	var resp struct {
		apiResponse
		Channels []struct {
			ID   string `json:"id"`
			User string `json:"user"`
		} `json:"channels"`
	}
	payload := map[string]string{"types": "im"}
	if err := a.post(ctx, "conversations.list", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.callErr("conversations.list"); err != nil {
		return nil, err
	}
	if resp.Channels == nil {
		return nil, fmt.Errorf("%w: conversations.list response has no channels", ErrProtocol)
	}

	byUserID := make(map[string]string, len(resp.Channels))
	for _, ch := range resp.Channels {
		byUserID[ch.User] = ch.ID
	}

	channels := make(map[string]string, len(users))
	for username, id := range users {
		if channelID, ok := byUserID[id]; ok {
			channels[username] = channelID
		}
	}

	a.mu.Lock()
	a.dmChannels = channels
	a.mu.Unlock()
	return channels, nil
}

// apiResponse is the envelope every Slack Web API call carries.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// callErr maps a platform-reported call failure to an error kind.
func (r apiResponse) callErr(method string) error {
	if r.OK {
		return nil
	}
	switch r.Error {
	case "invalid_auth", "not_authed", "token_revoked", "token_expired", "account_inactive", "missing_scope":
		return fmt.Errorf("%w: %s: %s", ErrAuthentication, method, r.Error)
	case "":
		return fmt.Errorf("%w: %s reported failure without an error field", ErrProtocol, method)
	default:
		return fmt.Errorf("%w: %s: %s", ErrTransport, method, r.Error)
	}
}

// post issues one authenticated JSON POST to a Web API method and decodes the
// response into out.
func (a *Account) post(ctx context.Context, method string, payload, out any) error {
	if a.token == "" {
		return fmt.Errorf("%w: api token not set", ErrAuthentication)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/"+method, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-type", "application/json")

	resp, err := a.client(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s: %s", ErrAuthentication, method, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", ErrTransport, method, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProtocol, method, err)
	}
	return nil
}

// client returns an HTTP client whose transport injects the bearer token.
func (a *Account) client(ctx context.Context) *http.Client {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.token, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src)
}
