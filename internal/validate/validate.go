package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"greenleaf/internal/domain"
)

var (
	reQ  = regexp.MustCompile(`^[\p{L}0-9 _'&.-]{1,50}$`)
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Q validates a search query: trims, enforces allowed characters and max length.
// An empty query is valid and means "everything".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// Qty parses a quantity, falling back to 1 and clamping to the cart bounds.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return domain.MinQuantity
	}
	return domain.Clamp(n)
}

// Delta parses a quantity step. Anything unparsable is rejected.
func Delta(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < -domain.MaxQuantity || n > domain.MaxQuantity {
		return 0, false
	}
	return n, true
}

// ID validates a product identifier.
func ID(s string) (domain.ProductID, bool) {
	s = strings.TrimSpace(s)
	return domain.ProductID(s), s != "" && reID.MatchString(s)
}

// Rating validates a minimum-rating filter; empty means no constraint.
func Rating(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 5 {
		return 0, false
	}
	return f, true
}

// Price validates a non-negative finite price bound.
func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// ScrollY validates a scroll offset in pixels. Fractions are truncated.
func ScrollY(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > 1e9 {
		return 0, false
	}
	return int(f), true
}
