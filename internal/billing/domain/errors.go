package domain

import "errors"

var (
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrBillNotFound       = errors.New("bill_not_found")
	ErrRunNotFound        = errors.New("billing_run_not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidReason      = errors.New("invalid_reason")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrMemberNotFound     = errors.New("member_not_found")
	ErrAlreadyCompensated = errors.New("bill_already_compensated")
	ErrBillingRunFailed   = errors.New("billing_run_failed")
	ErrBillingInProgress  = errors.New("billing_run_in_progress")
)
