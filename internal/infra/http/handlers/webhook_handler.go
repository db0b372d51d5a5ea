package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/messaging"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

const WebhookTokenHeader = "X-Webhook-Token"

type LeadCapturer interface {
	Execute(ctx context.Context, platform messaging.Platform, body []byte) (*usecase.CaptureLeadsOutput, error)
}

// WebhookHandler receives lead notifications from messaging platforms and
// web forms.
type WebhookHandler struct {
	Capture     LeadCapturer
	Token       string
	RateLimiter *RateLimiter
	Logger      *zap.Logger
}

func NewWebhookHandler(capture LeadCapturer, token string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		Capture:     capture,
		Token:       token,
		RateLimiter: NewRateLimiter(60, 10),
		Logger:      logger,
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid webhook token")
		return
	}

	if !h.RateLimiter.Allow(clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	platform := messaging.Platform(strings.ToLower(chi.URLParam(r, "platform")))
	out, err := h.Capture.Execute(r.Context(), platform, body)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *WebhookHandler) authorized(r *http.Request) bool {
	if h.Token == "" {
		return false
	}
	got := r.Header.Get(WebhookTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) == 1
}

// clientIP keys the limiter on the connection address. chimw.RealIP has
// already applied the trusted proxy headers.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	b        int
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		r:        rate.Limit(float64(requestsPerMinute) / 60.0),
		b:        burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.r, rl.b)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Cleanup drops visitors idle for longer than idle until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune(idle)
		}
	}
}

func (rl *RateLimiter) prune(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(rl.visitors, ip)
		}
	}
}
