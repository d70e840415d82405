package plantimg

import "strings"

// Renderer builds image references. It holds no mutable state and is safe
// for concurrent use.
type Renderer struct {
	enc Encoder
}

// New returns a Renderer using enc, or DefaultEncoder when enc is nil.
func New(enc Encoder) *Renderer {
	if enc == nil {
		enc = DefaultEncoder
	}
	return &Renderer{enc: enc}
}

var defaultRenderer = New(nil)

// URL returns <server>/<format>/<encoded text> for req. Encoder errors are
// returned as they are.
func (r *Renderer) URL(req Request) (string, error) {
	req = req.withDefaults()
	encoded, err := r.enc.Encode(strings.TrimSpace(req.Text))
	if err != nil {
		return "", err
	}
	return req.Server + "/" + req.Format + "/" + encoded, nil
}

// Render returns the image for req.
func (r *Renderer) Render(req Request) (*Image, error) {
	src, err := r.URL(req)
	if err != nil {
		return nil, err
	}
	return &Image{
		Src:       src,
		Alt:       AltText,
		ClassName: req.ClassName,
	}, nil
}

// Render renders content with the default encoder.
func Render(content interface{}, opts ...Option) (*Image, error) {
	return defaultRenderer.Render(NewRequest(content, opts...))
}

// URL returns the image reference for content with the default encoder.
func URL(content interface{}, opts ...Option) (string, error) {
	return defaultRenderer.URL(NewRequest(content, opts...))
}
