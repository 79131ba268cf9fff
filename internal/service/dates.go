package service

import (
	"fmt"
	"time"
)

const cycleDateLayout = "2006-01-02"

// NormalizeCycleDate validates a cycle date and converts the legacy
// DD.MM.YYYY form into ISO YYYY-MM-DD.
func NormalizeCycleDate(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("cycle date is required")
	}
	if t, err := time.Parse(cycleDateLayout, raw); err == nil {
		return t.Format(cycleDateLayout), nil
	}
	if t, err := time.Parse("02.01.2006", raw); err == nil {
		return t.Format(cycleDateLayout), nil
	}
	return "", fmt.Errorf("invalid cycle date %q", raw)
}
