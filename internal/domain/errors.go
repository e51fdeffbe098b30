package domain

import "errors"

var (
	// ErrInvalidMatch rejects a submission before anything is written.
	ErrInvalidMatch = errors.New("invalid match")

	// ErrAlreadyProcessed is not a failure for callers. Services turn it into StatusAlreadyRecorded.
	ErrAlreadyProcessed = errors.New("match already processed")

	ErrStoreUnavailable           = errors.New("store unavailable")
	ErrPlayerUpsertFailed         = errors.New("player upsert failed")
	ErrUserNotFound               = errors.New("user not found")
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
)
