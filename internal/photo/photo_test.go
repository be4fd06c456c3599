package photo

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewBuildsThumbnail(t *testing.T) {
	data := pngBytes(t, 1024, 768)
	p := New("me.png", "", data)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, data, p.Data)
	assert.Equal(t, "/previews/"+p.ID, p.URL())

	thumb, err := imaging.Decode(bytes.NewReader(p.Preview))
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), ThumbWidth)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), ThumbHeight)
}

func TestNewUndecodableHasNoPreview(t *testing.T) {
	p := New("page.html", "text/html", []byte("<script>alert(1)</script>"))
	assert.Empty(t, p.Preview)
	assert.Empty(t, p.URL())
	assert.Equal(t, []byte("<script>alert(1)</script>"), p.Data)
}

func TestPreviewsRelease(t *testing.T) {
	r := NewPreviews()
	a := New("a.png", "", pngBytes(t, 10, 10))
	b := New("b.png", "", pngBytes(t, 10, 10))
	r.Add(a)
	r.Add(b)
	assert.Equal(t, 2, r.Len())

	r.Release(a)
	r.Release(nil)
	_, ok := r.Get(a.ID)
	assert.False(t, ok)
	got, ok := r.Get(b.ID)
	assert.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 1, r.Len())
}

func TestNilPhotoURL(t *testing.T) {
	var p *Photo
	assert.Empty(t, p.URL())
}
