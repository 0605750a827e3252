package alerts

import (
	"strconv"
	"strings"

	"github.com/vitalsim/vitalsim/pkg/types"
	"github.com/vitalsim/vitalsim/server/internal/sim"
)

// evalCondition evaluates a rule condition string against a generated point.
//
// Supported expressions (field operator value):
//
//	value > 130
//	value >= 150
//	value < 20
//	mode == abnormal
//	mode != stopped
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, p types.Point, mode sim.Mode) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "mode":
		switch op {
		case "==":
			return string(mode) == rhs, 0
		case "!=":
			return string(mode) != rhs, 0
		}
		return false, 0

	case "value":
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, 0
		}
		return compareFloat(p.Value, op, threshold), p.Value

	default:
		return false, 0
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
