// Package directive finds legacy gallery directives in content bodies and
// builds their native replacements.
package directive

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies which legacy encoding a match uses.
type Kind int

const (
	// KindGallery is the [nggallery id=N] shortcode.
	KindGallery Kind = iota
	// KindDisplayedGallery is the placeholder image the 2.x editor inserts
	// for an attached gallery. Its id names a container row, not a gallery.
	KindDisplayedGallery
	// KindSinglePicture is the [singlepic id=N] shortcode.
	KindSinglePicture
)

func (k Kind) String() string {
	switch k {
	case KindGallery:
		return "nggallery"
	case KindDisplayedGallery:
		return "ngg_displayed_gallery"
	case KindSinglePicture:
		return "singlepic"
	default:
		return "unknown"
	}
}

// IsGallery reports whether the kind belongs to the whole-gallery family.
func (k Kind) IsGallery() bool {
	return k == KindGallery || k == KindDisplayedGallery
}

// Markers are the literal substrings used to preselect candidate records.
// The search is a superset filter; Scan decides what really matches.
var Markers = []string{"[nggallery", "ngg_displayed_gallery", "[singlepic"}

var (
	galleryRe   = regexp.MustCompile(`(?i)\[nggallery\b([^\]]*)\]`)
	singlepicRe = regexp.MustCompile(`(?i)\[singlepic\b([^\]]*)\]`)
	displayedRe = regexp.MustCompile(`(?i)<img\b[^>]*\bclass\s*=\s*["']?ngg_displayed_gallery[^>]*>`)
	containerRe = regexp.MustCompile(`(?i)id--(\d+)`)
)

var patterns = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{KindGallery, galleryRe},
	{KindDisplayedGallery, displayedRe},
	{KindSinglePicture, singlepicRe},
}

// Match is one directive occurrence. Start and End are byte offsets into
// the body the match was found in.
type Match struct {
	Kind  Kind
	Start int
	End   int
	Text  string
	Attrs Attrs
}

// ID returns the numeric id the directive references.
func (m Match) ID() (int64, bool) {
	return m.Attrs.ID()
}

// Next returns the leftmost directive starting at or after from.
func Next(body string, from int) (Match, bool) {
	if from < 0 {
		from = 0
	}
	if from >= len(body) {
		return Match{}, false
	}

	rest := body[from:]
	best := Match{Start: -1}
	for _, p := range patterns {
		loc := p.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		if best.Start >= 0 && from+loc[0] >= best.Start {
			continue
		}
		best = newMatch(p.kind, rest, loc, from)
	}
	if best.Start < 0 {
		return Match{}, false
	}
	return best, true
}

// Scan returns every directive in body, left to right, non-overlapping.
func Scan(body string) []Match {
	var matches []Match
	pos := 0
	for {
		m, ok := Next(body, pos)
		if !ok {
			return matches
		}
		matches = append(matches, m)
		pos = m.End
	}
}

// Count returns how many directives of the given kinds body contains. With
// no kinds, every directive counts.
func Count(body string, kinds ...Kind) int {
	n := 0
	for _, m := range Scan(body) {
		if len(kinds) == 0 || containsKind(kinds, m.Kind) {
			n++
		}
	}
	return n
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

func newMatch(kind Kind, rest string, loc []int, offset int) Match {
	m := Match{
		Kind:  kind,
		Start: offset + loc[0],
		End:   offset + loc[1],
		Text:  rest[loc[0]:loc[1]],
	}

	switch kind {
	case KindDisplayedGallery:
		m.Attrs = ParseAttrs(m.Text[len("<img") : len(m.Text)-1])
		if sub := containerRe.FindStringSubmatch(m.Attrs["src"]); sub != nil {
			m.Attrs["id"] = sub[1]
		} else if sub := containerRe.FindStringSubmatch(m.Text); sub != nil {
			m.Attrs["id"] = sub[1]
		}
	default:
		m.Attrs = ParseAttrs(rest[loc[2]:loc[3]])
	}
	return m
}

// parseID parses a positive decimal id.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
