package server

import (
	"strconv"
	"strings"

	billingdomain "github.com/smallbiznis/tapledger/internal/billing/domain"
)

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseOptionalInt returns 0 for an empty value so services apply their defaults.
func parseOptionalInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.Atoi(trimmed)
}

func parseOptionalBillStatus(value string) (*billingdomain.BillStatus, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return nil, nil
	}
	status := billingdomain.BillStatus(trimmed)
	switch status {
	case billingdomain.BillStatusUnpaid, billingdomain.BillStatusPaid, billingdomain.BillStatusDeferred:
		return &status, nil
	default:
		return nil, billingdomain.ErrInvalidStatus
	}
}
