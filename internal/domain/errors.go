package domain

import "errors"

var (
	// ErrUnauthorized means the upstream API rejected our credentials.
	// It aborts the whole run; nothing is delivered.
	ErrUnauthorized = errors.New("upstream rejected credentials")
	// ErrSourceUnavailable means the upstream API kept failing after the
	// retry budget was spent.
	ErrSourceUnavailable = errors.New("source api unavailable")
)
