package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/verimark/sessionkit/handle"
)

var (
	// ErrNoHandle indicates no refresh handle is stored; there is nothing to
	// exchange and the session cannot be recovered.
	ErrNoHandle = errors.New("no refresh handle stored")
	// ErrRejected indicates the server refused the handle (invalid, expired
	// or revoked). Fatal for the session; must never be retried.
	ErrRejected = errors.New("refresh handle rejected")
	// ErrUnavailable indicates a transport-level failure. Callers may retry;
	// the session pipeline treats it as unrecoverable for the original call.
	ErrUnavailable = errors.New("refresh endpoint unavailable")
)

// DefaultTimeout bounds a single refresh round-trip so a hung network cannot
// indefinitely stall callers queued behind the single-flight lock.
const DefaultTimeout = 10 * time.Second

// Result carries the newly minted access credential.
type Result struct {
	AccessToken string
	// TTL is the server-declared lifetime derived from the token's exp claim.
	// Zero when the server declared none; the caller decides the fallback.
	TTL time.Duration
}

// Config configures a Refresher.
type Config struct {
	// Endpoint receives POST {"refresh": <handle>} and answers
	// {"access": <token>} plus an optional rotated "refresh".
	Endpoint string
	// Timeout bounds one round-trip. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Client must not route through the session pipeline, or a failing
	// refresh would recurse into itself.
	Client *http.Client
}

// Refresher exchanges the stored refresh handle for a new access token.
type Refresher struct {
	endpoint string
	client   *http.Client
	handles  handle.Store
}

// New validates cfg and creates a Refresher reading handles from store.
func New(cfg Config, store handle.Store) (*Refresher, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("refresh endpoint required")
	}
	if store == nil {
		return nil, errors.New("handle store required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Refresher{
		endpoint: cfg.Endpoint,
		client:   client,
		handles:  store,
	}, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Refresh exchanges the stored handle for a new access token. When the server
// rotates the handle, the replacement is persisted before the result is
// returned.
func (r *Refresher) Refresh(ctx context.Context) (Result, error) {
	h, err := r.handles.Load(ctx)
	if errors.Is(err, handle.ErrNotFound) {
		return Result{}, ErrNoHandle
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	payload, err := json.Marshal(refreshRequest{Refresh: h})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var body refreshResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if decodeErr != nil {
			return Result{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, decodeErr)
		}
		if body.Access == "" {
			return Result{}, fmt.Errorf("%w: response carried no access token", ErrUnavailable)
		}
		if body.Refresh != "" && body.Refresh != h {
			// Server rotated the handle; losing it would strand the session.
			if err := r.handles.Save(ctx, body.Refresh); err != nil {
				return Result{}, fmt.Errorf("%w: persist rotated handle: %v", ErrUnavailable, err)
			}
		}
		return Result{
			AccessToken: body.Access,
			TTL:         declaredLifetime(body.Access, time.Now()),
		}, nil

	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		if body.Detail != "" {
			return Result{}, fmt.Errorf("%w: %s", ErrRejected, body.Detail)
		}
		return Result{}, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)

	default:
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

// DeclaredLifetime derives the remaining lifetime from the token's exp claim,
// or zero when the token declares none. Used at login ingestion and after
// refresh; the server-declared lifetime is authoritative when present.
func DeclaredLifetime(token string) time.Duration {
	return declaredLifetime(token, time.Now())
}

// declaredLifetime derives the remaining lifetime from the token's exp claim.
// The parse is unverified: the client holds no signing key, and the value only
// schedules local expiry tracking. Returns zero when no exp claim is present.
func declaredLifetime(token string, now time.Time) time.Duration {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	ttl := exp.Time.Sub(now)
	if ttl <= 0 {
		return 0
	}
	return ttl
}
