package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/verimark/sessionkit/credential"
	"github.com/verimark/sessionkit/internal/metrics"
	"github.com/verimark/sessionkit/refresh"
)

// RequestIDHeader carries the per-request correlation ID attached by Decorate.
const RequestIDHeader = "X-Request-ID"

// refreshKey is the single-flight key: there is exactly one credential to
// refresh, so all callers coalesce onto one slot.
const refreshKey = "refresh"

// Refresher mints a new access credential from the stored refresh handle.
type Refresher interface {
	Refresh(ctx context.Context) (refresh.Result, error)
}

// Options configures a Pipeline.
type Options struct {
	// DefaultTTL is applied when a refreshed token declares no lifetime.
	DefaultTTL time.Duration
	// OnForcedLogout runs once per failed refresh incident, after the
	// credential store has been cleared. The hook owns the rest of the
	// teardown (handle clearing, navigation, notification).
	OnForcedLogout func()

	Metrics *metrics.Metrics
	Logger  watermill.LoggerAdapter
}

// Pipeline is an http.RoundTripper that attaches the current access
// credential and recovers from expired-credential failures. Requests without
// a stored credential are sent unauthenticated; some endpoints are public.
type Pipeline struct {
	base       http.RoundTripper
	creds      *credential.Store
	refresher  Refresher
	group      singleflight.Group
	defaultTTL time.Duration
	onLogout   func()
	metrics    *metrics.Metrics
	logger     watermill.LoggerAdapter
}

// NewPipeline wraps base with credential attachment and refresh recovery.
// A nil base falls back to http.DefaultTransport.
func NewPipeline(base http.RoundTripper, creds *credential.Store, refresher Refresher, opts Options) *Pipeline {
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Pipeline{
		base:       base,
		creds:      creds,
		refresher:  refresher,
		defaultTTL: opts.DefaultTTL,
		onLogout:   opts.OnForcedLogout,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Decorate attaches the bearer credential (when one is live) and a request ID.
// The request is modified in place; use it for calls that bypass Client-style
// transports, e.g. websocket dials.
func (p *Pipeline) Decorate(req *http.Request) *http.Request {
	if token, ok := p.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return req
}

// RoundTrip sends the request with the current credential attached. On a 401
// it performs at most one refresh-and-retry; a 401 on the retried send is
// propagated untouched. Any other response or error passes through unmodified.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	out := p.Decorate(req.Clone(req.Context()))
	usedToken := strings.TrimPrefix(out.Header.Get("Authorization"), "Bearer ")
	resp, err := p.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	token, refreshErr := p.refreshCredential(req.Context(), usedToken)
	if refreshErr != nil {
		// Unrecoverable session: teardown already ran inside the shared
		// refresh; the original 401 is the caller's answer.
		return resp, nil
	}

	if req.GetBody == nil && req.Body != nil {
		// Consumed, non-replayable body. The refresh still benefits every
		// other in-flight request; this one keeps its original response.
		p.logger.Debug("skipping retry for non-replayable request body", watermill.LogFields{
			"method": req.Method,
			"url":    req.URL.String(),
		})
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return resp, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)
	if retry.Header.Get(RequestIDHeader) == "" {
		retry.Header.Set(RequestIDHeader, uuid.NewString())
	}

	drain(resp)
	p.metrics.Inc(metrics.MetricRetryAfterRefresh)
	return p.base.RoundTrip(retry)
}

// refreshCredential runs the single-flight refresh. Exactly one Refresher
// call is made per expiry incident; concurrent callers share its outcome.
// On failure the credential store is cleared and the forced-logout hook runs
// once, inside the shared execution.
func (p *Pipeline) refreshCredential(ctx context.Context, usedToken string) (string, error) {
	// A 401 earned by a token that has since been replaced needs no refresh:
	// the incident was already resolved by another caller.
	if current, ok := p.creds.Token(); ok && current != usedToken {
		p.metrics.Inc(metrics.MetricRefreshCoalesced)
		return current, nil
	}

	// The refresh outlives any single caller: waiters queued behind the lock
	// must not lose the result because the first caller gave up. The round
	// trip stays bounded by the refresher's own timeout.
	v, err, shared := p.group.Do(refreshKey, func() (any, error) {
		result, refreshErr := p.refresher.Refresh(context.WithoutCancel(ctx))
		if refreshErr != nil {
			p.classifyFailure(refreshErr)
			p.creds.Clear()
			if p.onLogout != nil {
				p.onLogout()
			}
			return nil, refreshErr
		}
		ttl := result.TTL
		if ttl <= 0 {
			ttl = p.defaultTTL
			p.metrics.Inc(metrics.MetricTokenTTLDefaulted)
			p.logger.Info("refreshed token declared no lifetime, applying default", watermill.LogFields{
				"default_ttl": p.defaultTTL.String(),
			})
		}
		p.creds.SetToken(result.AccessToken, ttl)
		p.metrics.Inc(metrics.MetricRefreshSuccess)
		return result.AccessToken, nil
	})
	if shared {
		p.metrics.Inc(metrics.MetricRefreshCoalesced)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *Pipeline) classifyFailure(err error) {
	if errors.Is(err, refresh.ErrUnavailable) {
		p.metrics.Inc(metrics.MetricRefreshUnavailable)
		return
	}
	p.metrics.Inc(metrics.MetricRefreshRejected)
}

// drain releases the original response before its request is re-sent.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
