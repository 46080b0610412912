package domain

import "errors"

var (
	ErrPollNotFound      = errors.New("poll not found")
	ErrInvalidUserID     = errors.New("user id must be positive")
	ErrInvalidPollID     = errors.New("invalid poll id")
	ErrInvalidDays       = errors.New("days must be between 1 and 365")
	ErrInvalidLimit      = errors.New("limit must be between 1 and 50")
	ErrInvalidTimeframe  = errors.New("invalid timeframe")
	ErrInvalidBucketSize = errors.New("invalid bucket size")
	ErrInvalidPeriod     = errors.New("invalid aggregation period")
	ErrInternal          = errors.New("internal server error")
)
