package photo

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Thumbnail bounds for card previews.
const (
	ThumbWidth  = 256
	ThumbHeight = 320
)

// PreviewType is the content type every preview is served with.
const PreviewType = "image/jpeg"

// Photo is a locally selected image. Data is sent upstream untouched;
// Preview is the JPEG thumbnail the card preview shows, empty when the
// image could not be decoded.
type Photo struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	Preview     []byte
}

// URL is the path the preview is served from, or "" when there is no preview.
func (p *Photo) URL() string {
	if p == nil || len(p.Preview) == 0 {
		return ""
	}
	return "/previews/" + p.ID
}

// New builds a photo with a fresh id and a thumbnail preview. Images that
// cannot be decoded get no preview and the card shows its placeholder.
func New(filename, contentType string, data []byte) *Photo {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	p := &Photo{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}
	if thumb, err := Thumbnail(data); err == nil {
		p.Preview = thumb
	}
	return p
}

// Thumbnail fits an image inside ThumbWidth x ThumbHeight and encodes it as JPEG.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = imaging.Fit(img, ThumbWidth, ThumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Previews holds the photos a workspace currently references. Anything not
// released stays in memory, so every replace or discard must Release.
type Previews struct {
	mu    sync.RWMutex
	items map[string]*Photo
}

// NewPreviews returns an empty registry.
func NewPreviews() *Previews {
	return &Previews{items: make(map[string]*Photo)}
}

// Add registers p.
func (r *Previews) Add(p *Photo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p
}

// Get looks a photo up by id.
func (r *Previews) Get(id string) (*Photo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	return p, ok
}

// Release drops p; nil is ignored.
func (r *Previews) Release(p *Photo) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, p.ID)
}

// Len reports how many photos are held.
func (r *Previews) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
