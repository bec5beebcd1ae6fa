package legacy

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elliotchance/phpserialize"
)

// DecodeContainer extracts the first gallery ID from a displayed-gallery
// container payload. The payload is either C-escaped base64-encoded JSON or
// PHP serialize() output. Serialized data is decoded unescaped, since its
// string lengths count the raw bytes.
func DecodeContainer(payload string) (int64, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return 0, ErrUndecodable
	}
	s := strings.TrimSpace(StripCSlashes(trimmed))

	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err == nil {
			if id, ok := firstID(obj["container_ids"]); ok {
				return id, nil
			}
			return 0, fmt.Errorf("no container_ids in payload: %w", ErrUndecodable)
		}
	}

	arr, err := phpserialize.UnmarshalAssociativeArray([]byte(trimmed))
	if err != nil {
		return 0, ErrUndecodable
	}
	for k, v := range arr {
		if key, ok := k.(string); ok && key == "container_ids" {
			if id, ok := firstID(v); ok {
				return id, nil
			}
		}
	}
	return 0, fmt.Errorf("no container_ids in payload: %w", ErrUndecodable)
}

// firstID returns element zero of a decoded list as a positive integer.
func firstID(v any) (int64, bool) {
	switch list := v.(type) {
	case []any:
		if len(list) == 0 {
			return 0, false
		}
		return toID(list[0])
	case map[any]any:
		for _, key := range []any{int64(0), 0, "0"} {
			if first, ok := list[key]; ok {
				return toID(first)
			}
		}
	case map[string]any:
		if first, ok := list["0"]; ok {
			return toID(first)
		}
	}
	return 0, false
}

func toID(v any) (int64, bool) {
	var id int64
	switch n := v.(type) {
	case int64:
		id = n
	case int:
		id = int64(n)
	case float64:
		id = int64(n)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	default:
		return 0, false
	}
	return id, id > 0
}

// StripCSlashes undoes C-style backslash escaping: \n, \t, \r, \a, \v, \b,
// \f, octal \ooo and hex \xHH sequences are decoded; any other escaped
// character is kept without its backslash.
func StripCSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'v':
			b.WriteByte('\v')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'x':
			j := i + 1
			for j < len(s) && j < i+3 && isHex(s[j]) {
				j++
			}
			if j == i+1 {
				b.WriteByte('x')
				continue
			}
			n, _ := strconv.ParseUint(s[i+1:j], 16, 8)
			b.WriteByte(byte(n))
			i = j - 1
		default:
			if isOctal(c) {
				j := i
				for j < len(s) && j < i+3 && isOctal(s[j]) {
					j++
				}
				n, _ := strconv.ParseUint(s[i:j], 8, 16)
				b.WriteByte(byte(n))
				i = j - 1
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
