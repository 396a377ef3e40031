package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// normalizeRow flattens driver-specific value types so codecs see one shape
// regardless of whether postgres or sqlite produced the row.
func normalizeRow(in map[string]any) Row {
	out := make(Row, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case []byte:
			out[k] = string(x)
		case datatypes.JSON:
			out[k] = string(x)
		case int:
			out[k] = int64(x)
		case int32:
			out[k] = int64(x)
		case float32:
			out[k] = float64(x)
		default:
			out[k] = v
		}
	}
	return out
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// optString stores empty optional text as NULL.
func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case decimal.Decimal:
		f, _ := x.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case int32:
		return int(x)
	case float64:
		return int(math.Round(x))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return int(math.Round(asFloat(x)))
		}
		return n
	default:
		return 0
	}
}

func asIntPtr(v any) *int {
	if v == nil {
		return nil
	}
	n := asInt(v)
	return &n
}

func asDecimalPtr(v any) *decimal.Decimal {
	var d decimal.Decimal
	switch x := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		d = x
	case float64:
		d = decimal.NewFromFloat(x)
	case int64:
		d = decimal.NewFromInt(x)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		d = parsed
	default:
		parsed, err := decimal.NewFromString(asString(x))
		if err != nil {
			return nil
		}
		d = parsed
	}
	return &d
}

// asStringList decodes a JSON list column. Anything unreadable yields nil.
func asStringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, asString(e))
		}
		return out
	}
	raw := asString(v)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// jsonList encodes a list for a JSON column. A nil list is stored as NULL.
func jsonList(list []string) any {
	if list == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
