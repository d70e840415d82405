package plantimg

import "github.com/maocatooo/plantimg/urlenc"

// Encoder turns trimmed diagram text into its URL-safe form.
type Encoder interface {
	Encode(text string) (string, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(text string) (string, error)

// Encode calls f(text).
func (f EncoderFunc) Encode(text string) (string, error) {
	return f(text)
}

// DefaultEncoder is the deflate encoding PlantUML servers expect.
var DefaultEncoder Encoder = EncoderFunc(urlenc.Encode)

// HexEncoder is the uncompressed "~h" form. URLs are longer but readable.
var HexEncoder Encoder = EncoderFunc(func(text string) (string, error) {
	return urlenc.EncodeHex(text), nil
})
