package testcase

import (
	"fmt"
	"regexp"
	"strconv"
)

var estimateRegex = regexp.MustCompile(`^(\d+)([mh])$`)

// ParseEstimate converts estimates like 2h or 30m to hours.
func ParseEstimate(estimate string) (float64, error) {
	m := estimateRegex.FindStringSubmatch(estimate)
	if m == nil {
		return 0, fmt.Errorf("%w: the estimation '%s' is not in the valid format", ErrInvalidEstimate, estimate)
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidEstimate, err)
	}

	if m[2] == "m" {
		return float64(amount) / 60, nil
	}
	return float64(amount), nil
}
