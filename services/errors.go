package services

import "errors"

var (
	ErrQuotaExceeded    = errors.New("daily limit reached")
	ErrInvalidUTR       = errors.New("utr must be exactly 12 digits")
	ErrInvalidPlan      = errors.New("unknown plan")
	ErrEmptyInput       = errors.New("input is empty")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPlanRequired     = errors.New("upgrade required")
	ErrNoPendingPayment = errors.New("no pending payment for user")
	ErrNotFound         = errors.New("not found")
	ErrGeneration       = errors.New("generation failed")
)
