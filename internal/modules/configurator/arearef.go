package configurator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

var areaRefObjectKeys = []string{"id", "ID", "areaId", "areaID", "sideId", "sideID"}

// NormalizeAreaRef reduces a scalar, numeric string, object or list area reference to one
// integer id. Lists resolve to their first resolvable entry. It never panics.
func NormalizeAreaRef(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return integral(t)
	case float32:
		return integral(float64(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return integral(f)
		}
		return 0, false
	case string:
		return parseLeadingInt(t)
	case []any:
		for _, e := range t {
			if id, ok := NormalizeAreaRef(e); ok {
				return id, true
			}
		}
		return 0, false
	case []int:
		if len(t) == 0 {
			return 0, false
		}
		return t[0], true
	case map[string]any:
		refs := make([]any, 0, len(areaRefObjectKeys))
		for _, k := range areaRefObjectKeys {
			refs = append(refs, t[k])
		}
		return NormalizeAreaRef(refs)
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// parseLeadingInt reads an optional sign and the leading digits, ignoring any trailing text.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ResolveItemAreaID returns the area an item is bound to.
func ResolveItemAreaID(item *domain.Item) (int, bool) {
	if item == nil {
		return 0, false
	}
	return NormalizeAreaRef(item.AreaRefs)
}
