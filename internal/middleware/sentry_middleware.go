package middleware

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go/http"
)

// SentryMiddleware wraps the router so panics inside handlers are
// captured and delivered before the response is abandoned.
func SentryMiddleware(next http.Handler) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: true,
		Timeout:         2 * time.Second,
	})

	return sentryHandler.Handle(next)
}
