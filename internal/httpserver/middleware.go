package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"puntomoda/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requestLogger emits one http_request line per request. In development every
// request is logged; otherwise successful ones are logged at debug level.
func requestLogger(logger *zap.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("http_request", fields...)
		case development:
			logger.Info("http_request", fields...)
		default:
			logger.Debug("http_request", fields...)
		}
	}
}

// recovery turns panics into a 500 envelope.
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("request_id", requestIDFrom(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		respondError(c, http.StatusInternalServerError, "internal server error")
	})
}

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perMinute, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) > 10000 {
			l.evictIdle(now)
		}
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) evictIdle(now time.Time) {
	for ip, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.limiters, ip)
		}
	}
}

// rateLimit throttles mutating requests per client IP. perMinute <= 0 disables it.
func rateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	l := newIPRateLimiter(perMinute, burst)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !l.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "60")
			respondError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

type sessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// authenticate verifies a bearer token when one is presented and stores the
// session on the context. Requests without a token pass through untouched.
func authenticate(verifier sessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || verifier == nil {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "malformed authorization header")
			return
		}
		sess, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*domain.Session)
	return s
}

// authorizeUser checks that the caller may act on userID. Without a session
// the request is allowed only when authentication is optional.
func authorizeUser(c *gin.Context, authRequired bool, userID string) error {
	sess := sessionFrom(c)
	if sess == nil {
		if authRequired {
			return domain.ErrUnauthorized
		}
		return nil
	}
	if !sess.Owns(userID) {
		return fmt.Errorf("session does not belong to user %s: %w", userID, domain.ErrForbidden)
	}
	return nil
}

// requireOwner applies authorizeUser to a path parameter.
func requireOwner(authRequired bool, param string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authorizeUser(c, authRequired, c.Param(param)); err != nil {
			writeError(c, logger, err)
			return
		}
		c.Next()
	}
}

func requireSession(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionFrom(c) == nil {
			writeError(c, logger, domain.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
