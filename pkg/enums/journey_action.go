package enums

import "fmt"

// JourneyAction is the canonical action recorded on a journey event.
type JourneyAction string

const (
	JourneyActionViewed      JourneyAction = "viewed"
	JourneyActionAddedToCart JourneyAction = "added_to_cart"
	JourneyActionPurchased   JourneyAction = "purchased"
)

var validJourneyActions = []JourneyAction{
	JourneyActionViewed,
	JourneyActionAddedToCart,
	JourneyActionPurchased,
}

// IsValid reports whether the value matches the canonical journey action enum.
func (a JourneyAction) IsValid() bool {
	for _, candidate := range validJourneyActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseJourneyAction converts the raw string to JourneyAction.
func ParseJourneyAction(value string) (JourneyAction, error) {
	for _, candidate := range validJourneyActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journey action %q", value)
}
