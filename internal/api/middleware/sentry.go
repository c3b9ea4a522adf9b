package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
)

// SentryMiddleware opens one transaction per request on a cloned hub, tags it
// with the request id, the client and the response status, and reports panics
// and 5xx responses. Without sentry.Init it only costs the clone.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		options := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if trace := r.Header.Get(sentry.SentryTraceHeader); trace != "" {
			options = append(options, sentry.ContinueFromHeaders(trace, r.Header.Get(sentry.SentryBaggageHeader)))
		}

		transaction := sentry.StartTransaction(r.Context(), r.Method+" "+r.URL.Path, options...)
		defer transaction.Finish()

		r = r.WithContext(sentry.SetHubOnContext(transaction.Context(), hub))

		hub.Scope().SetRequest(r)
		if requestID := GetRequestID(r.Context()); requestID != "" {
			hub.Scope().SetTag("request_id", requestID)
			transaction.SetTag("request_id", requestID)
		}

		defer func() {
			if err := recover(); err != nil {
				transaction.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.statusCode()
		transaction.Status = spanStatus(status)
		transaction.SetData("http.response.status_code", status)

		// set by APIKeyAuth further down the chain
		if id := clientID(r); id != "" {
			hub.Scope().SetTag("client", id)
			transaction.SetTag("client", id)
		}

		if status >= http.StatusInternalServerError {
			hub.CaptureMessage(r.Method + " " + r.URL.Path + ": " + http.StatusText(status))
		}
	})
}

// spanStatus maps the status codes finrag actually returns.
func spanStatus(status int) sentry.SpanStatus {
	switch status {
	case http.StatusBadRequest:
		return sentry.SpanStatusInvalidArgument
	case http.StatusUnauthorized:
		return sentry.SpanStatusUnauthenticated
	case http.StatusNotFound:
		return sentry.SpanStatusNotFound
	case http.StatusRequestEntityTooLarge:
		return sentry.SpanStatusResourceExhausted
	case http.StatusBadGateway:
		return sentry.SpanStatusUnavailable
	}

	switch {
	case status < 400:
		return sentry.SpanStatusOK
	case status < 500:
		return sentry.SpanStatusInvalidArgument
	default:
		return sentry.SpanStatusInternalError
	}
}
