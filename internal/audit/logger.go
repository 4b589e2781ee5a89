package audit

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLoginSuccess    EventType = "login_success"
	EventLoginFailure    EventType = "login_failure"
	EventSetupComplete   EventType = "setup_complete"
	EventSetupRejected   EventType = "setup_rejected"
	EventAuthFailure     EventType = "auth_failure"
	EventRateLimitExceed EventType = "rate_limit_exceeded"
	EventPackageCreate   EventType = "package_create"
	EventPackageUpdate   EventType = "package_update"
	EventPackageDelete   EventType = "package_delete"
)

type Event struct {
	Type      EventType
	UserID    int64
	Username  string
	IP        string
	UserAgent string
	RequestID string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != 0 {
		logger = logger.With().Int64("user_id", event.UserID).Logger()
	}
	if event.Username != "" {
		logger = logger.With().Str("username", event.Username).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", event.UserAgent).Logger()
	}
	if event.RequestID != "" {
		logger = logger.With().Str("request_id", event.RequestID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = ClientIP(r)
	event.UserAgent = r.UserAgent()
	event.RequestID = middleware.GetReqID(r.Context())
	Log(r.Context(), event)
}

// ClientIP returns the host part of RemoteAddr. The router's RealIP
// middleware has already applied any trusted forwarding headers.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
