package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrMalformedRecord = errors.New("booking record has neither docId nor id")

	ErrInvalidTransition = errors.New("transition not allowed from current status")

	ErrMissingSchedule = errors.New("approval requires an allocated date and time range")

	ErrMissingReason = errors.New("rejection requires a reason")

	ErrValidation = errors.New("validation failed")

	ErrInvalidDecision = errors.New("decision must be approve or reject")
)
