// Package urlenc implements the text encoding PlantUML servers accept in
// their URL path: raw DEFLATE followed by PlantUML's own base64 alphabet.
package urlenc

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// HexPrefix marks the uncompressed hexadecimal form.
const HexPrefix = "~h"

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// PlantUML packs 3 bytes into 4 characters with the same bit layout as
// base64; only the alphabet differs.
var encoding = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)

// Encode compresses diagram text into its URL form.
func Encode(text string) (_ string, err error) {
	b := &bytes.Buffer{}

	zw, err := flate.NewWriter(b, flate.BestCompression)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode plantuml text")
	}
	if _, err := io.Copy(zw, strings.NewReader(text)); err != nil {
		return "", errors.Wrap(err, "failed to encode plantuml text")
	}
	if err := zw.Close(); err != nil {
		return "", errors.Wrap(err, "failed to encode plantuml text")
	}

	// a trailing partial group is zero filled so every group yields 4 characters
	data := b.Bytes()
	if r := len(data) % 3; r != 0 {
		data = append(data, make([]byte, 3-r)...)
	}
	return encoding.EncodeToString(data), nil
}

// Decode reverses Encode. Values carrying HexPrefix are decoded with DecodeHex.
func Decode(encoded string) (string, error) {
	if strings.HasPrefix(encoded, HexPrefix) {
		return DecodeHex(encoded)
	}

	raw, err := encoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrapf(err, "failed to decode plantuml text %q", encoded)
	}

	zr := flate.NewReader(bytes.NewReader(raw))
	defer zr.Close()

	var b bytes.Buffer
	if _, err := io.Copy(&b, zr); err != nil {
		return "", errors.Wrap(err, "failed to inflate plantuml text")
	}
	return b.String(), nil
}

// EncodeHex returns the uncompressed hexadecimal form, "~h" followed by the
// hex bytes of text. Servers accept it wherever the compressed form is used.
func EncodeHex(text string) string {
	return HexPrefix + hex.EncodeToString([]byte(text))
}

// DecodeHex reverses EncodeHex.
func DecodeHex(encoded string) (string, error) {
	if !strings.HasPrefix(encoded, HexPrefix) {
		return "", errors.Errorf("missing %s prefix", HexPrefix)
	}
	b, err := hex.DecodeString(strings.TrimPrefix(encoded, HexPrefix))
	if err != nil {
		return "", errors.Wrap(err, "failed to decode plantuml hex text")
	}
	return string(b), nil
}

// FromURL returns the encoded segment of a PlantUML image URL, the last
// non-empty path element.
func FromURL(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndexByte(u, '/'); i >= 0 {
		return u[i+1:]
	}
	return u
}
