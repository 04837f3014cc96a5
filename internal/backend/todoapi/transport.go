package todoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/session"
)

// debugTransport tags every request with an X-Request-ID and logs the
// round trip at debug level. Sits closest to the wire so it sees the
// request as actually sent.
type debugTransport struct {
	log  *zap.Logger
	next http.RoundTripper
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := uuid.NewString()
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", id)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.String("request_id", id),
			zap.Error(err))
		return nil, err
	}

	t.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// clearOnUnauthorized drops the stored session when the server rejects
// its token. Sitting below every call site makes 401 handling global:
// no command deals with it, and the manager's no-op Clear on an already
// cleared session keeps it to one storage clear per rejection.
type clearOnUnauthorized struct {
	sess *session.Manager
	log  *zap.Logger
	next http.RoundTripper
}

func (t *clearOnUnauthorized) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if cerr := t.sess.Clear(); cerr != nil {
			t.log.Warn("failed to clear rejected session", zap.Error(cerr))
		}
	}
	return resp, nil
}

// newAuthTransport builds the transport for protected endpoints:
// bearer attachment from the session manager, session clearing on 401,
// request logging underneath.
func newAuthTransport(sess *session.Manager, log *zap.Logger, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &clearOnUnauthorized{
		sess: sess,
		log:  log,
		next: &oauth2.Transport{
			Source: sess,
			Base:   &debugTransport{log: log, next: base},
		},
	}
}

// newPlainTransport builds the transport for the unauthenticated
// endpoints (register, login). No bearer, and a 401 here means bad
// credentials, never a session to clear.
func newPlainTransport(log *zap.Logger, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &debugTransport{log: log, next: base}
}
