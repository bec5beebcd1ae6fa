package directive

import (
	"testing"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

func TestScanGalleryVariants(t *testing.T) {
	tests := []struct {
		body string
		want int64
	}{
		{`[nggallery id=5]`, 5},
		{`[nggallery id="5"]`, 5},
		{`[NGGallery ID='12' template=carousel]`, 12},
		{`[nggallery id = " 7"]`, 7},
	}

	for _, tt := range tests {
		matches := Scan(tt.body)
		if len(matches) != 1 {
			t.Errorf("Scan(%q) found %d matches, want 1", tt.body, len(matches))
			continue
		}
		if matches[0].Kind != KindGallery {
			t.Errorf("Scan(%q) kind = %v, want nggallery", tt.body, matches[0].Kind)
		}
		id, ok := matches[0].ID()
		if !ok || id != tt.want {
			t.Errorf("Scan(%q) id = %d (ok=%v), want %d", tt.body, id, ok, tt.want)
		}
	}
}

func TestScanMissingID(t *testing.T) {
	matches := Scan(`before [nggallery template=x] after`)
	if len(matches) != 1 {
		t.Fatalf("found %d matches, want 1", len(matches))
	}
	if _, ok := matches[0].ID(); ok {
		t.Error("ID() should fail when the id attribute is missing")
	}
	if matches[0].Text != "[nggallery template=x]" {
		t.Errorf("Text = %q", matches[0].Text)
	}
}

func TestScanOrderAndOffsets(t *testing.T) {
	body := `A [singlepic id=3 w=320 h=240 float=right] B [nggallery id=5] C`
	matches := Scan(body)
	if len(matches) != 2 {
		t.Fatalf("found %d matches, want 2", len(matches))
	}

	if matches[0].Kind != KindSinglePicture || matches[1].Kind != KindGallery {
		t.Errorf("kinds = %v, %v", matches[0].Kind, matches[1].Kind)
	}
	for _, m := range matches {
		if body[m.Start:m.End] != m.Text {
			t.Errorf("offsets [%d:%d] = %q, want %q", m.Start, m.End, body[m.Start:m.End], m.Text)
		}
	}

	sp := matches[0].Attrs
	if sp.Width() != "320" || sp.Height() != "240" {
		t.Errorf("width/height = %q/%q", sp.Width(), sp.Height())
	}
	if sp.Float() != model.FloatRight {
		t.Errorf("float = %q, want right", sp.Float())
	}
}

func TestScanSinglePictureSynonyms(t *testing.T) {
	matches := Scan(`[singlepic id=9 width=100 height=80]`)
	if len(matches) != 1 {
		t.Fatalf("found %d matches, want 1", len(matches))
	}
	a := matches[0].Attrs
	if a.Width() != "100" || a.Height() != "80" {
		t.Errorf("width/height = %q/%q, want 100/80", a.Width(), a.Height())
	}
	if a.Float() != model.FloatLeft {
		t.Errorf("default float = %q, want left", a.Float())
	}
}

func TestScanDisplayedGallery(t *testing.T) {
	body := `<p><img class="ngg_displayed_gallery mceItem" src="https://example.com/nextgen-attach_to_post/preview/id--42" alt="" /></p>`
	matches := Scan(body)
	if len(matches) != 1 {
		t.Fatalf("found %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Kind != KindDisplayedGallery {
		t.Errorf("kind = %v, want ngg_displayed_gallery", m.Kind)
	}
	if id, ok := m.ID(); !ok || id != 42 {
		t.Errorf("id = %d (ok=%v), want 42", id, ok)
	}
	if !m.Kind.IsGallery() {
		t.Error("displayed gallery should belong to the gallery family")
	}
}

func TestScanIgnoresOrdinaryImages(t *testing.T) {
	if n := Count(`<img class="alignleft" src="x.jpg">`); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestNextFrom(t *testing.T) {
	body := `[nggallery id=1][nggallery id=2]`
	m, ok := Next(body, 1)
	if !ok {
		t.Fatal("expected a match after offset 1")
	}
	if id, _ := m.ID(); id != 2 {
		t.Errorf("id = %d, want 2", id)
	}
	if _, ok := Next(body, len(body)); ok {
		t.Error("expected no match at end of body")
	}
}

func TestCountByKind(t *testing.T) {
	body := `[nggallery id=1] [singlepic id=2] [singlepic id=3]`
	if got := Count(body, KindSinglePicture); got != 2 {
		t.Errorf("Count(singlepic) = %d, want 2", got)
	}
	if got := Count(body, KindGallery, KindDisplayedGallery); got != 1 {
		t.Errorf("Count(gallery family) = %d, want 1", got)
	}
	if got := Count(body); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestGalleryReplacement(t *testing.T) {
	tests := []struct {
		mode        model.GalleryMode
		created     []int64
		preexisting []int64
		want        string
	}{
		{model.GalleryModeExclude, []int64{7, 8}, nil, `[gallery]`},
		{model.GalleryModeExclude, []int64{7, 8}, []int64{1, 2}, `[gallery exclude="1,2"]`},
		{model.GalleryModeIDs, []int64{7, 8}, []int64{1}, `[gallery link="file" ids="7,8"]`},
	}
	for _, tt := range tests {
		if got := Gallery(tt.mode, tt.created, tt.preexisting); got != tt.want {
			t.Errorf("Gallery(%s, %v, %v) = %q, want %q", tt.mode, tt.created, tt.preexisting, got, tt.want)
		}
	}
}

func TestSinglePicture(t *testing.T) {
	got := SinglePicture(Image{
		FullURL:   "https://x/a.jpg",
		MediumURL: "https://x/a-300.jpg",
		Alt:       `Bee "buzz"`,
		Height:    "240",
		Float:     model.FloatCenter,
	})
	want := `<a href="https://x/a.jpg"><img class="aligncenter" src="https://x/a-300.jpg" alt="Bee &#34;buzz&#34;" height="240" /></a>`
	if got != want {
		t.Errorf("SinglePicture =\n%s\nwant\n%s", got, want)
	}

	got = SinglePicture(Image{FullURL: "https://x/a.jpg"})
	want = `<a href="https://x/a.jpg"><img class="alignleft" src="https://x/a.jpg" alt="" /></a>`
	if got != want {
		t.Errorf("SinglePicture without medium =\n%s\nwant\n%s", got, want)
	}
}

func TestAttrsFirstOccurrenceWins(t *testing.T) {
	a := ParseAttrs(`id=1 ID=2`)
	if a["id"] != "1" {
		t.Errorf("id = %q, want 1", a["id"])
	}
}
