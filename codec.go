package sheetorm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Formula is an opaque cell expression written through to the backend
// verbatim, bypassing the column's declared type. The backend evaluates it;
// on read-back the computed value is decoded per the column type as usual.
type Formula string

// ParseCell decodes raw cell text into the typed value of a column. Empty
// text decodes to nil for every type. Malformed cells degrade rather than
// fail: a bad number parses to NaN, bad JSON to nil, a bad date to the zero
// time. A corrupt cell must never abort a full-table read.
func ParseCell(text string, t ColumnType) any {
	if text == "" {
		return nil
	}
	switch t {
	case Number:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case Boolean:
		return strings.EqualFold(text, "true")
	case JSON:
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil
		}
		return v
	case Date:
		ts, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return time.Time{}
		}
		return ts
	default:
		// String, UUID, CUID
		return text
	}
}

// SerializeCell encodes a typed value back into cell text. Dates become
// RFC 3339 instants, structured values compact JSON, nil becomes empty text,
// and a Formula passes through untouched.
func SerializeCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case Formula:
		return string(val)
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.Format(time.RFC3339)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// NormalizePrivateKey rewrites the escaped "\n" sequences that service
// account keys pick up when passed through environment variables back into
// real newlines.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
