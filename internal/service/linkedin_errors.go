package service

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type PublishErrorKind string

const (
	// PublishErrorRevoked means the stored credential is dead and must be discarded.
	PublishErrorRevoked PublishErrorKind = "revoked"
	// PublishErrorRateLimited is retryable after the vendor supplied delay.
	PublishErrorRateLimited PublishErrorKind = "rate_limited"
	// PublishErrorTransient covers 5xx and unreadable error bodies.
	PublishErrorTransient PublishErrorKind = "transient"
	// PublishErrorFatal is any other rejection; retrying will not help.
	PublishErrorFatal PublishErrorKind = "fatal"
)

const (
	DefaultRateLimitRetryAfter = 60 * time.Second
	DefaultTransientRetryAfter = 30 * time.Second
)

// LinkedIn serviceErrorCode values for unusable access tokens.
var revokedTokenCodes = map[int64]bool{
	65600: true, // invalid access token
	65601: true, // revoked by member
	65602: true, // expired
}

// PublishError is the classified outcome of a rejected UGC post.
type PublishError struct {
	Kind             PublishErrorKind
	StatusCode       int
	ServiceErrorCode int64
	Message          string
	RetryAfter       time.Duration
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("linkedin publish %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *PublishError) Retryable() bool {
	return e.Kind == PublishErrorRateLimited || e.Kind == PublishErrorTransient
}

// RetryAfterSeconds rounds the hint up to whole seconds.
func (e *PublishError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int((e.RetryAfter + time.Second - 1) / time.Second)
}

// ClassifyPublishResponse maps a LinkedIn response to a PublishError.
// It returns nil for 2xx responses.
func ClassifyPublishResponse(status int, header http.Header, body []byte, now time.Time) *PublishError {
	if status >= 200 && status < 300 {
		return nil
	}

	valid := gjson.ValidBytes(body)
	message := http.StatusText(status)
	var code int64
	if valid {
		if m := gjson.GetBytes(body, "message").String(); m != "" {
			message = m
		}
		code = gjson.GetBytes(body, "serviceErrorCode").Int()
	}

	e := &PublishError{StatusCode: status, ServiceErrorCode: code, Message: message}

	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = PublishErrorRateLimited
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"), now)
	case status >= 500 || !valid:
		e.Kind = PublishErrorTransient
		e.RetryAfter = DefaultTransientRetryAfter
	case status == http.StatusUnauthorized && isRevokedToken(code, message):
		e.Kind = PublishErrorRevoked
	default:
		e.Kind = PublishErrorFatal
	}
	return e
}

func isRevokedToken(code int64, message string) bool {
	if revokedTokenCodes[code] {
		return true
	}
	msg := strings.ToLower(message)
	return strings.Contains(msg, "revoked") || strings.Contains(msg, "expired")
}

// parseRetryAfter accepts delta-seconds or an HTTP date, falling back to 60s.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRateLimitRetryAfter
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRateLimitRetryAfter
}
