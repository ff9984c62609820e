package sheetorm

import (
	"regexp"
	"strings"
	"time"
)

// Filter selects rows by column value. Each entry maps a column name to
// either a literal, matched by equality against the decoded value, or a
// Cond carrying comparison operators. All entries and all operators within
// an entry are ANDed.
type Filter map[string]any

// Cond is the operator form of a filter entry. Zero-valued operators are
// ignored. Gt/Lt/Gte/Lte never match a null row value; Ne treats null as
// "not equal" to any non-null operand. Like/ILike match the whole textual
// value, with '%' standing for any run of characters and '_' for exactly
// one; ILike compares case-insensitively.
type Cond struct {
	Gt  any
	Lt  any
	Gte any
	Lte any
	Ne  any

	Like  string
	ILike string
}

// Matches reports whether a decoded row satisfies the filter.
func (f Filter) Matches(row Row) bool {
	for col, want := range f {
		have := row[col]
		if cond, ok := want.(Cond); ok {
			if !cond.matches(have) {
				return false
			}
			continue
		}
		if !looseEqual(have, want) {
			return false
		}
	}
	return true
}

func (c Cond) matches(v any) bool {
	if c.Gt != nil {
		if cmp, ok := compareOrdered(v, c.Gt); !ok || cmp <= 0 {
			return false
		}
	}
	if c.Gte != nil {
		if cmp, ok := compareOrdered(v, c.Gte); !ok || cmp < 0 {
			return false
		}
	}
	if c.Lt != nil {
		if cmp, ok := compareOrdered(v, c.Lt); !ok || cmp >= 0 {
			return false
		}
	}
	if c.Lte != nil {
		if cmp, ok := compareOrdered(v, c.Lte); !ok || cmp > 0 {
			return false
		}
	}
	if c.Ne != nil && looseEqual(v, c.Ne) {
		return false
	}
	if c.Like != "" {
		s, ok := v.(string)
		if !ok || !matchLike(s, c.Like, false) {
			return false
		}
	}
	if c.ILike != "" {
		s, ok := v.(string)
		if !ok || !matchLike(s, c.ILike, true) {
			return false
		}
	}
	return true
}

// looseEqual compares two decoded values, coercing across numeric kinds so
// a caller's int literal matches a decoded float64 cell.
func looseEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			return af == bf
		}
		return false
	}
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			return at.Equal(bt)
		}
		return false
	}
	return a == b
}

// compareOrdered orders two decoded values. It reports -1/0/1 and whether
// the pair is comparable at all; a null on either side is not.
func compareOrdered(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if af, aok := toFloat64(a); aok {
		bf, bok := toFloat64(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if at, aok := a.(time.Time); aok {
		bt, bok := b.(time.Time)
		if !bok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// matchLike matches value against a SQL-style pattern anchored at both ends.
func matchLike(value, pattern string, caseInsensitive bool) bool {
	var sb strings.Builder
	if caseInsensitive {
		sb.WriteString("(?is)")
	} else {
		sb.WriteString("(?s)")
	}
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(value)
}
