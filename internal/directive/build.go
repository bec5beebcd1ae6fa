package directive

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// GalleryExclude builds a native gallery shortcode that shows every image
// attached to the record except the listed ones.
func GalleryExclude(exclude []int64) string {
	if len(exclude) == 0 {
		return "[gallery]"
	}
	return fmt.Sprintf(`[gallery exclude="%s"]`, JoinIDs(exclude))
}

// GalleryIDs builds a native gallery shortcode listing ids explicitly,
// linking each thumbnail to the full-size file.
func GalleryIDs(ids []int64) string {
	return fmt.Sprintf(`[gallery link="file" ids="%s"]`, JoinIDs(ids))
}

// Gallery builds the replacement for a whole-gallery directive.
func Gallery(mode model.GalleryMode, created, preexisting []int64) string {
	if mode == model.GalleryModeIDs {
		return GalleryIDs(created)
	}
	return GalleryExclude(preexisting)
}

// Image describes the inline rendering of a single picture.
type Image struct {
	FullURL   string
	MediumURL string
	Alt       string
	Height    string
	Float     model.Float
}

// SinglePicture renders a linked image. The medium URL falls back to the
// full URL and the height attribute is omitted when unset.
func SinglePicture(img Image) string {
	medium := img.MediumURL
	if medium == "" {
		medium = img.FullURL
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a href="%s"><img class="%s" src="%s" alt="%s"`,
		html.EscapeString(img.FullURL),
		img.Float.AlignClass(),
		html.EscapeString(medium),
		html.EscapeString(img.Alt),
	)
	if img.Height != "" {
		fmt.Fprintf(&b, ` height="%s"`, html.EscapeString(img.Height))
	}
	b.WriteString(` /></a>`)
	return b.String()
}

// JoinIDs formats ids as a comma-separated list.
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
