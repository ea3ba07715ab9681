package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Storage errors
	ErrRecordAbsent    = errors.New("timer record not found")
	ErrRecordMalformed = errors.New("timer record is malformed")
	ErrStoreWrite      = errors.New("timer record could not be saved")

	// Controller errors
	ErrNotConfirmed = errors.New("operation not confirmed by user")
	ErrUnknownMode  = errors.New("unknown timer mode")
)
