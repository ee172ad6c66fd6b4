package enums

import "fmt"

// PricingMode selects between a single fixed price and a from/to range.
type PricingMode string

const (
	PricingModeFixed PricingMode = "fixed"
	PricingModeRange PricingMode = "range"
)

var validPricingModes = []PricingMode{
	PricingModeFixed,
	PricingModeRange,
}

// String implements fmt.Stringer.
func (m PricingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PricingMode.
func (m PricingMode) IsValid() bool {
	for _, candidate := range validPricingModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePricingMode converts raw input into a PricingMode.
func ParsePricingMode(value string) (PricingMode, error) {
	for _, candidate := range validPricingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing mode %q", value)
}
