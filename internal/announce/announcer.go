// Package announce turns errors into transient user-facing notifications and
// sends the user back to the login page when their session has expired.
package announce

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

const (
	// DefaultMessage is shown when neither the error nor the caller has one.
	DefaultMessage = "Something went wrong"
	// DefaultRedirectDelay is how long an AUTH notification stays up before
	// the redirect fires.
	DefaultRedirectDelay = 1500 * time.Millisecond
	// DefaultLoginPath is where AUTH failures send the user.
	DefaultLoginPath = "/login"

	VariantDestructive = "destructive"

	sendTimeout = 5 * time.Second
)

var titles = map[core.Kind]string{
	core.KindAuth:       "Session expired",
	core.KindNetwork:    "Connection problem",
	core.KindValidation: "Check your input",
	core.KindNotFound:   "Not found",
	core.KindPermission: "Access denied",
	core.KindAPI:        "Request failed",
	core.KindUnknown:    "Error",
}

// Notification is a transient message for the user.
type Notification struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Kind     core.Kind `json:"kind"`
	Variant  string    `json:"variant"`
	Redirect string    `json:"redirect,omitempty"`
	At       time.Time `json:"at"`
}

// Redirector navigates the user to a path.
type Redirector interface {
	Redirect(path string)
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(path string)

func (f RedirectFunc) Redirect(path string) { f(path) }

// Recorder counts announcements, typically backed by metrics.
type Recorder interface {
	RecordAnnouncement(kind core.Kind)
}

// Config holds announcer settings
type Config struct {
	LoginPath     string        `mapstructure:"login_path"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
	WebhookURL    string        `mapstructure:"webhook_url"`
}

// Announcer implements asyncdata.Announcer.
type Announcer struct {
	sink       Sink
	redirector Redirector
	loginPath  string
	delay      time.Duration
	logger     *zap.Logger
	recorder   Recorder
	now        func() time.Time

	mu      sync.Mutex
	pending map[*time.Timer]struct{}
	stopped bool
}

// New creates an Announcer. A nil redirector disables AUTH redirects.
func New(cfg Config, sink Sink, redirector Redirector, logger *zap.Logger) *Announcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}
	return &Announcer{
		sink:       sink,
		redirector: redirector,
		loginPath:  cfg.LoginPath,
		delay:      cfg.RedirectDelay,
		logger:     logger.Named("announce"),
		now:        time.Now,
		pending:    make(map[*time.Timer]struct{}),
	}
}

// WithRecorder attaches a recorder and returns a.
func (a *Announcer) WithRecorder(r Recorder) *Announcer {
	a.recorder = r
	return a
}

// Announce emits a notification for err. AUTH errors also schedule a
// redirect to the login path.
func (a *Announcer) Announce(err error, fallback string) {
	n := a.notification(err, fallback)

	if n.Kind == core.KindAuth && a.redirector != nil {
		if a.schedule() {
			n.Redirect = a.loginPath
		}
	}

	if a.recorder != nil {
		a.recorder.RecordAnnouncement(n.Kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if sendErr := a.sink.Send(ctx, n); sendErr != nil {
		a.logger.Error("failed to deliver notification",
			zap.String("sink", a.sink.Name()),
			zap.Error(sendErr),
		)
	}
}

// Stop cancels pending redirects. Later AUTH announcements still notify but
// no longer redirect.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for t := range a.pending {
		t.Stop()
	}
	a.pending = make(map[*time.Timer]struct{})
}

func (a *Announcer) notification(err error, fallback string) Notification {
	kind := core.KindUnknown
	message := ""
	if err != nil {
		classified := core.Classify(err)
		kind = classified.Kind
		message = classified.Message
	}
	if message == "" {
		message = fallback
	}
	if message == "" {
		message = DefaultMessage
	}

	return Notification{
		Title:   titles[kind],
		Message: message,
		Kind:    kind,
		Variant: VariantDestructive,
		At:      a.now(),
	}
}

func (a *Announcer) schedule() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return false
	}

	var t *time.Timer
	t = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		_, live := a.pending[t]
		delete(a.pending, t)
		a.mu.Unlock()

		if live {
			a.logger.Info("redirecting to login", zap.String("path", a.loginPath))
			a.redirector.Redirect(a.loginPath)
		}
	})
	a.pending[t] = struct{}{}
	return true
}
