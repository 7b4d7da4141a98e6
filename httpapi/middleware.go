package httpapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	logMsgRequestHandled          = "request handled"
	logMsgRequestFailed           = "request failed"
	logMsgEncodingResponseFailed  = "encoding response body failed"
	logMsgRecoveredFromPanic      = "recovered from panic"
	logMsgRateLimitExceeded       = "rate limit exceeded"
	logMsgSplittingRemoteAddrFail = "splitting remote address failed"

	logAttrMethod     = "method"
	logAttrPath       = "path"
	logAttrStatus     = "status"
	logAttrDurationMS = "durationMS"
	logAttrBytes      = "bytes"
	logAttrRequestID  = "requestID"
	logAttrRemoteAddr = "remoteAddr"
	logAttrError      = "error"
	logAttrPanic      = "panic"

	requestIDHeader = "X-Request-ID"

	clientIdleEviction = 3 * time.Minute
	clientSweepEvery   = time.Minute
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)

	return id
}

// withRequestID tags every request with an ID so log lines across the
// stack can be correlated. A client-supplied ID is kept.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDContextKey, id)

		if s.requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
			defer cancel()
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		s.logger.Info(logMsgRequestHandled,
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrStatus, metrics.Code,
			logAttrDurationMS, durationToMilliseconds(metrics.Duration),
			logAttrBytes, metrics.Written,
			logAttrRequestID, requestIDFrom(r.Context()))
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				w.Header().Set("Connection", "close")

				s.logger.Error(logMsgRecoveredFromPanic,
					logAttrMethod, r.Method,
					logAttrPath, r.URL.Path,
					logAttrRequestID, requestIDFrom(r.Context()),
					logAttrPanic, recovered)

				s.writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error: "the server encountered a problem and could not process the request",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limitRate applies a token-bucket limit per client IP. Stale clients
// are evicted so the map stays bounded.
func (s *Server) limitRate(next http.Handler) http.Handler {
	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			s.logger.Warn(logMsgSplittingRemoteAddrFail,
				logAttrRemoteAddr, r.RemoteAddr,
				logAttrError, err.Error())

			ip = r.RemoteAddr
		}

		mu.Lock()

		if time.Since(lastSweep) > clientSweepEvery {
			for key, c := range clients {
				if time.Since(c.lastSeen) > clientIdleEviction {
					delete(clients, key)
				}
			}

			lastSweep = time.Now()
		}

		c, exists := clients[ip]
		if !exists {
			c = &client{limiter: rate.NewLimiter(rate.Limit(s.rateLimit.rps), s.rateLimit.burst)}
			clients[ip] = c
		}

		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()

		mu.Unlock()

		if !allowed {
			s.logger.Warn(logMsgRateLimitExceeded,
				logAttrRemoteAddr, ip,
				logAttrRequestID, requestIDFrom(r.Context()))

			s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})

			return
		}

		next.ServeHTTP(w, r)
	})
}

func durationToMilliseconds(duration time.Duration) float64 {
	return float64(duration.Microseconds()) / 1000.0
}
