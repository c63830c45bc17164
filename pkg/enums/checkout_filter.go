package enums

import "fmt"

// CheckoutFilter narrows journey queries by checkout outcome.
type CheckoutFilter string

const (
	CheckoutFilterAll           CheckoutFilter = "all"
	CheckoutFilterCheckedOut    CheckoutFilter = "checked_out"
	CheckoutFilterNotCheckedOut CheckoutFilter = "not_checked_out"
)

var validCheckoutFilters = []CheckoutFilter{
	CheckoutFilterAll,
	CheckoutFilterCheckedOut,
	CheckoutFilterNotCheckedOut,
}

// IsValid reports whether the value matches the canonical checkout filter enum.
func (f CheckoutFilter) IsValid() bool {
	for _, candidate := range validCheckoutFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseCheckoutFilter converts the raw string to CheckoutFilter.
// An empty value defaults to CheckoutFilterAll.
func ParseCheckoutFilter(value string) (CheckoutFilter, error) {
	if value == "" {
		return CheckoutFilterAll, nil
	}
	for _, candidate := range validCheckoutFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout filter %q", value)
}
