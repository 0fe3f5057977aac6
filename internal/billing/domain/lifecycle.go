package domain

import "fmt"

var transitions = map[BillStatus][]BillStatus{
	BillStatusUnpaid:   {BillStatusPaid, BillStatusDeferred},
	BillStatusDeferred: {BillStatusPaid},
}

// Transition validates a status change. PAID is terminal.
func Transition(from, to BillStatus) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// IsOutstanding reports whether the bill still awaits payment.
func (s BillStatus) IsOutstanding() bool {
	return s == BillStatusUnpaid || s == BillStatusDeferred
}
