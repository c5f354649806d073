package importer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// groupingReplacer strips thousands separators and the spaces some locales group with.
var groupingReplacer = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "")

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

// cellString renders a cell as text. Whole floats print without a fraction so that an
// account number coerced to a number by a spreadsheet keeps its digits.
func cellString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return formatFloat(t), nil
	case float32:
		return formatFloat(float64(t)), nil
	case int:
		return strconv.Itoa(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case decimal.Decimal:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported cell value of type %T", v)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseAmount converts a money cell, tolerating grouping separators such as "1,500.00".
func parseAmount(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	}

	s, err := cellString(v)
	if err != nil {
		return decimal.Zero, err
	}
	cleaned := groupingReplacer.Replace(s)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a valid amount", s)
	}
	return d, nil
}

func parseWholeNumber(v any) (int, error) {
	d, err := parseAmount(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("%s is not a whole non-negative number", d.String())
	}
	return int(d.IntPart()), nil
}
