package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Result classifies the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultError   Result = "error"
	ResultDenied  Result = "denied"
)

// Well-known security actions. Free-form actions are allowed; these constants
// keep the common ones queryable.
const (
	ActionRegister           = "auth.register"
	ActionLogin              = "auth.login"
	ActionLogout             = "auth.logout"
	ActionPasswordChange     = "auth.password_change"
	ActionPasswordReset      = "auth.password_reset"
	ActionPasswordResetReq   = "auth.password_reset_request"
	ActionAccountDeactivate  = "auth.account_deactivate"
	ActionAccountDelete      = "auth.account_delete"
	ActionSuspiciousActivity = "auth.suspicious_activity"
)

// Event is a single audit record. Events are written before the triggering
// error is returned to the caller, so the trail survives failed operations.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Result    Result         `json:"result"`
	UserID    string         `json:"user_id,omitempty"`
	Email     string         `json:"email,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventOption attaches optional fields to an event.
type EventOption func(*Event)

func WithUserID(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

func WithEmail(email string) EventOption {
	return func(e *Event) { e.Email = email }
}

func WithIP(ip string) EventOption {
	return func(e *Event) { e.IP = ip }
}

func WithUserAgent(ua string) EventOption {
	return func(e *Event) { e.UserAgent = ua }
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// Logger records audit events.
type Logger interface {
	Log(ctx context.Context, action string, opts ...EventOption) error
	LogError(ctx context.Context, action string, err error, opts ...EventOption) error
}

type auditLogger struct {
	storage Storage
}

// NewLogger creates an audit logger over the given storage.
func NewLogger(storage Storage) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &auditLogger{storage: storage}
}

func (l *auditLogger) Log(ctx context.Context, action string, opts ...EventOption) error {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    ResultSuccess,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	return l.storage.Store(ctx, event)
}

func (l *auditLogger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    ResultError,
		CreatedAt: time.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	for _, opt := range opts {
		opt(&event)
	}
	return l.storage.Store(ctx, event)
}
