// Package telemetry reports errors to Sentry when the operator opts in.
// Every message is scrubbed of credentials before it leaves the process.
package telemetry

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/logging"
)

var enabled atomic.Bool

func logger() *slog.Logger {
	return logging.ForService("telemetry")
}

// Init configures the Sentry client from settings. It does nothing when error
// reporting is disabled.
func Init(settings *conf.Settings) error {
	if !settings.Sentry.Enabled {
		return nil
	}
	return initSentry(sentry.ClientOptions{
		Dsn:         settings.Sentry.DSN,
		Release:     "artid@" + settings.Version,
		Environment: settings.Sentry.Environment,
	}, settings.Sentry.Debug)
}

func initSentry(opts sentry.ClientOptions, debug bool) error {
	opts.SampleRate = 1.0
	opts.AttachStacktrace = false
	opts.ServerName = ""
	opts.BeforeSend = func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		event = applyPrivacyFilters(event)
		if debug {
			logger().Debug("sending error event", "message", event.Message, "tags", event.Tags)
		}
		return event
	}

	if err := sentry.Init(opts); err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry-init").
			Build()
	}
	enabled.Store(true)
	logger().Info("error reporting enabled", "environment", opts.Environment)
	return nil
}

// applyPrivacyFilters drops host and user details and scrubs credentials
// from every message the event carries.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Message = errors.ScrubCredentials(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = errors.ScrubCredentials(event.Exception[i].Value)
	}
	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	return event
}

// CaptureError reports err on behalf of component. Enhanced errors add their
// category as a tag and use it for grouping.
func CaptureError(err error, component string) {
	if err == nil || !enabled.Load() {
		return
	}

	category := string(errors.CategoryGeneric)
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.GetCategory()
	}
	message := errors.ScrubCredentials(err.Error())

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetTag("category", category)
		scope.SetFingerprint([]string{component, category})

		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = message
		event.Exception = []sentry.Exception{{
			Type:  component + " " + category + " error",
			Value: message,
		}}
		sentry.CaptureEvent(event)
	})
}

// Flush waits up to timeout for queued events to be sent.
func Flush(timeout time.Duration) {
	if enabled.Load() {
		sentry.Flush(timeout)
	}
}
