package mailparse

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"strings"
)

type (
	// PartDecoder reverses one transfer encoding. A decode error drops that
	// single part, never the whole extraction.
	PartDecoder interface {
		Decode(body string) ([]byte, error)
	}

	base64Decoder          struct{}
	quotedPrintableDecoder struct{}
	identityDecoder        struct{}
)

// DecoderFor selects the decoder matching a declared
// Content-Transfer-Encoding. Unknown or absent encodings pass bytes through
// untouched.
func DecoderFor(encoding string) PartDecoder {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64Decoder{}
	case "quoted-printable":
		return quotedPrintableDecoder{}
	default:
		return identityDecoder{}
	}
}

func (base64Decoder) Decode(body string) ([]byte, error) {
	// Mail clients wrap base64 at 76 columns; the decoder wants it unbroken.
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', ' ', '\t':
			return -1
		}
		return r
	}, body)
	return base64.StdEncoding.DecodeString(cleaned)
}

func (quotedPrintableDecoder) Decode(body string) ([]byte, error) {
	return io.ReadAll(quotedprintable.NewReader(strings.NewReader(body)))
}

func (identityDecoder) Decode(body string) ([]byte, error) {
	return []byte(body), nil
}
