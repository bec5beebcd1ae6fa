package directive

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// Attrs holds the attributes of a directive. Keys are lower-cased and
// values trimmed.
type Attrs map[string]string

var attrRe = regexp.MustCompile(`([\w-]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'\]>]+))`)

// ParseAttrs parses name=value pairs. Values may be double-quoted,
// single-quoted or bare, and whitespace around "=" is allowed. The first
// occurrence of a name wins.
func ParseAttrs(s string) Attrs {
	attrs := make(Attrs)
	for _, sub := range attrRe.FindAllStringSubmatch(s, -1) {
		key := strings.ToLower(sub[1])
		if _, seen := attrs[key]; seen {
			continue
		}
		val := sub[2]
		switch {
		case sub[3] != "":
			val = sub[3]
		case sub[4] != "":
			val = sub[4]
		}
		attrs[key] = strings.TrimSpace(val)
	}
	return attrs
}

// Get returns the first non-empty value among the given synonyms.
func (a Attrs) Get(keys ...string) string {
	for _, k := range keys {
		if v := a[k]; v != "" {
			return v
		}
	}
	return ""
}

// ID returns the positive numeric id attribute.
func (a Attrs) ID() (int64, bool) {
	return parseID(a["id"])
}

// Width returns the w or width attribute.
func (a Attrs) Width() string { return a.Get("w", "width") }

// Height returns the h or height attribute.
func (a Attrs) Height() string { return a.Get("h", "height") }

// Float returns the alignment hint, defaulting to left.
func (a Attrs) Float() model.Float { return model.ParseFloat(a["float"]) }

// String renders the attributes in key order, for log lines.
func (a Attrs) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + a[k]
	}
	return strings.Join(parts, " ")
}
