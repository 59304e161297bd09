package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validation messages shown verbatim to the user.
const (
	MsgLocalityRequired   = "Locality is required! Please select a locality to continue."
	MsgPriceRangeRequired = "Price Range is required! Please select a price range to continue."
)

// ValidationError is a MissingField failure. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a MissingField failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Criteria is the filter payload. It is only built by Controller.Criteria,
// which guarantees City and PriceRange are set.
type Criteria struct {
	City       string
	PriceRange string
	Cuisines   []string // nil when no cuisine was picked
	MinRating  float64
}

func (c Criteria) String() string {
	cuisines := "any"
	if len(c.Cuisines) > 0 {
		cuisines = strings.Join(c.Cuisines, ",")
	}
	return fmt.Sprintf("%s/%s/%s/%.1f", c.City, c.PriceRange, cuisines, c.MinRating)
}

// ParseMinRating reads the minimum rating input. Empty or invalid input is 0;
// values are clamped to the 0..5 rating scale.
func ParseMinRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
