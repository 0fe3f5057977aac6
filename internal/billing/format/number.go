// Package format renders human-facing billing values.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const (
	DefaultBillNumberTemplate = "TAP-{YYYY}{MM}-{SEQ4}"
	PeriodLayout              = "2006-01"
)

// Period returns the YYYY-MM billing period of t in UTC.
func Period(t time.Time) string {
	return t.UTC().Format(PeriodLayout)
}

// BillNumber renders a bill number from a template, the period instant and
// a sequence that restarts every period.
func BillNumber(template string, at time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("bill number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid bill sequence: %d", seq)
	}

	at = at.UTC()
	out := template
	out = strings.ReplaceAll(out, "{YYYY}", at.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", at.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", at.Format("01"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in bill number format: %s", out)
	}
	return out, nil
}

// Money renders cents as a decimal amount with the currency code.
func Money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}
