package mailparse

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJPEG is big enough to clear the minimum attachment size.
func fakeJPEG(size int) []byte {
	data := bytes.Repeat([]byte{0xAB}, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}

// wrap formats base64 output the way mail agents do, in 76-column lines.
func wrap(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}

func multipartEmail(subject, boundary string, parts ...string) string {
	var b strings.Builder
	b.WriteString("From: shopper@example.com\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=\"" + boundary + "\"\r\n")
	b.WriteString("\r\n")
	for _, part := range parts {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(part)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return b.String()
}

func imagePart(filename string, content []byte) string {
	return "Content-Type: image/jpeg; name=\"" + filename + "\"\r\n" +
		"Content-Disposition: attachment; filename=\"" + filename + "\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		wrap(base64.StdEncoding.EncodeToString(content))
}

func TestExtractorExtract(t *testing.T) {
	extractor := NewExtractor(zerolog.Nop())

	t.Run("base64 jpeg attachment round-trips", func(t *testing.T) {
		original := fakeJPEG(4096)
		raw := multipartEmail("Groceries", "BOUNDARY123",
			"Content-Type: text/plain\r\n\r\nSee attached receipt.",
			imagePart("receipt.jpg", original),
		)

		attachments := extractor.Extract(raw)
		require.Len(t, attachments, 1)
		assert.Equal(t, "receipt.jpg", attachments[0].Filename)
		assert.Equal(t, "image/jpeg", attachments[0].ContentType)
		assert.Equal(t, original, attachments[0].Content)
	})

	t.Run("multiple attachments all recovered", func(t *testing.T) {
		raw := multipartEmail("Two receipts", "xyz",
			imagePart("first.jpg", fakeJPEG(2048)),
			imagePart("second.png", fakeJPEG(3000)),
		)

		attachments := extractor.Extract(raw)
		require.Len(t, attachments, 2)
		assert.Equal(t, "first.jpg", attachments[0].Filename)
		assert.Equal(t, "second.png", attachments[1].Filename)
	})

	t.Run("text-only email yields nothing", func(t *testing.T) {
		raw := multipartEmail("No images here", "b1",
			"Content-Type: text/plain\r\n\r\nJust words.",
			"Content-Type: text/html\r\n\r\n<p>Just markup.</p>",
		)
		assert.Empty(t, extractor.Extract(raw))
	})

	t.Run("message without boundary or image markers yields nothing", func(t *testing.T) {
		raw := "From: a@example.com\r\nSubject: hi\r\n\r\nplain body, no attachments"
		assert.Empty(t, extractor.Extract(raw))
	})

	t.Run("undersized attachment is dropped", func(t *testing.T) {
		raw := multipartEmail("Tiny", "b2",
			imagePart("thumb.jpg", fakeJPEG(100)),
		)
		assert.Empty(t, extractor.Extract(raw))
	})

	t.Run("non-image content type is dropped", func(t *testing.T) {
		part := "Content-Type: application/pdf; name=\"doc.pdf\"\r\n" +
			"Content-Disposition: attachment; filename=\"doc.pdf\"\r\n" +
			"Content-Transfer-Encoding: base64\r\n" +
			"\r\n" +
			wrap(base64.StdEncoding.EncodeToString(fakeJPEG(4096)))
		raw := multipartEmail("Invoice", "b3", part)
		assert.Empty(t, extractor.Extract(raw))
	})

	t.Run("corrupt base64 drops only that part", func(t *testing.T) {
		broken := "Content-Type: image/jpeg\r\n" +
			"Content-Transfer-Encoding: base64\r\n" +
			"\r\n" +
			"!!!not base64!!!"
		raw := multipartEmail("Mixed", "b4",
			broken,
			imagePart("good.jpg", fakeJPEG(2048)),
		)

		attachments := extractor.Extract(raw)
		require.Len(t, attachments, 1)
		assert.Equal(t, "good.jpg", attachments[0].Filename)
	})

	t.Run("quoted-printable encoding is decoded", func(t *testing.T) {
		content := strings.Repeat("receipt-line-data.", 100)
		part := "Content-Type: image/png\r\n" +
			"Content-Disposition: attachment; filename=\"scan.png\"\r\n" +
			"Content-Transfer-Encoding: quoted-printable\r\n" +
			"\r\n" +
			content
		raw := multipartEmail("QP", "b5", part)

		attachments := extractor.Extract(raw)
		require.Len(t, attachments, 1)
		assert.Equal(t, []byte(content), attachments[0].Content)
	})
}

func TestHeader(t *testing.T) {
	raw := "From: a@example.com\r\nSubject: Week 18 groceries\r\n\r\nbody"
	assert.Equal(t, "Week 18 groceries", Header(raw, "Subject"))
	assert.Equal(t, "Week 18 groceries", Header(raw, "subject"))
	assert.Equal(t, "", Header(raw, "Reply-To"))
}
