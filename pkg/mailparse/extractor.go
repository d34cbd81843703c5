package mailparse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MinAttachmentSize guards against truncated or empty parts. Anything
// smaller than this after decoding is not a plausible receipt photo.
const MinAttachmentSize = 1024

const fallbackContentType = "image/jpeg"

// Attachment is one image recovered from a raw email. It lives only long
// enough for the ingestion orchestrator to store its bytes.
type Attachment struct {
	Filename         string
	ContentType      string
	TransferEncoding string
	Content          []byte
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	boundaryPattern         = regexp.MustCompile(`(?i)boundary[=: ]+["']?([^"'\s;]+)`)
	filenamePattern         = regexp.MustCompile(`(?i)filename[=: ]+["']?([^"'\r\n;]+)`)
	contentTypePattern      = regexp.MustCompile(`(?i)Content-Type:\s*([^\r\n;]+)`)
	transferEncodingPattern = regexp.MustCompile(`(?i)Content-Transfer-Encoding:\s*([^\r\n;]+)`)
	headerBodySplitPattern  = regexp.MustCompile(`\r?\n\r?\n`)
	headerLinePattern       = regexp.MustCompile(`(?mi)^([\w-]+):\s*(.+)$`)
)

// Extractor recovers image attachments from raw RFC822-style email text
// without a full mail parser. Malformed input degrades to an empty result;
// it never returns an error.
type Extractor struct {
	classifiers []PartClassifier
	log         zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		classifiers: DefaultClassifiers(),
		log:         log.With().Str("component", "mailparse").Logger(),
	}
}

// Extract returns every plausible image attachment in rawMessage. An empty
// result is not an error; forwarded emails without images are a legitimate
// non-event.
func (e *Extractor) Extract(rawMessage string) []Attachment {
	var attachments []Attachment

	for _, part := range e.candidateParts(rawMessage) {
		att, ok := e.parsePart(part)
		if !ok {
			continue
		}
		attachments = append(attachments, att)
	}

	e.log.Debug().Int("count", len(attachments)).Msg("attachment extraction finished")
	return attachments
}

// Header pulls a single header value (e.g. "Subject") out of the raw
// message, or "" if absent.
func Header(rawMessage, name string) string {
	for _, m := range headerLinePattern.FindAllStringSubmatch(rawMessage, -1) {
		if strings.EqualFold(m[1], name) {
			return strings.TrimSpace(m[2])
		}
	}
	return ""
}

// candidateParts splits the message on its multipart boundary and keeps the
// fragments the classifier chain flags as image parts. Without a boundary
// declaration the whole message is the single candidate.
func (e *Extractor) candidateParts(rawMessage string) []string {
	var fragments []string

	if m := boundaryPattern.FindStringSubmatch(rawMessage); m != nil {
		boundary := m[1]
		for _, frag := range strings.Split(rawMessage, "--"+boundary) {
			trimmed := strings.TrimSpace(frag)
			if trimmed == "" || trimmed == "--" {
				// empty fragment or the closing boundary remnant
				continue
			}
			fragments = append(fragments, frag)
		}
	} else {
		fragments = []string{rawMessage}
	}

	var parts []string
	for _, frag := range fragments {
		if e.isImagePart(frag) {
			parts = append(parts, frag)
		}
	}
	return parts
}

func (e *Extractor) isImagePart(part string) bool {
	for _, c := range e.classifiers {
		if c.Matches(part) {
			return true
		}
	}
	return false
}

// parsePart turns one image fragment into an Attachment. Any failure drops
// just this part.
func (e *Extractor) parsePart(part string) (Attachment, bool) {
	filename := fmt.Sprintf("attachment_%d", time.Now().Unix())
	if m := filenamePattern.FindStringSubmatch(part); m != nil {
		filename = strings.TrimSpace(m[1])
	}

	contentType := fallbackContentType
	if m := contentTypePattern.FindStringSubmatch(part); m != nil {
		contentType = strings.ToLower(strings.TrimSpace(m[1]))
	}

	var encoding string
	if m := transferEncodingPattern.FindStringSubmatch(part); m != nil {
		encoding = strings.ToLower(strings.TrimSpace(m[1]))
	}

	pieces := headerBodySplitPattern.Split(part, 2)
	if len(pieces) < 2 {
		e.log.Debug().Str("filename", filename).Msg("part has no header/body separator, dropping")
		return Attachment{}, false
	}

	body := strings.TrimSpace(pieces[1])
	body = strings.TrimSuffix(body, "--")
	body = strings.TrimSpace(body)

	content, err := DecoderFor(encoding).Decode(body)
	if err != nil {
		e.log.Warn().Err(err).Str("filename", filename).Str("encoding", encoding).
			Msg("attachment decode failed, dropping part")
		return Attachment{}, false
	}

	if len(content) < MinAttachmentSize {
		e.log.Debug().Str("filename", filename).Int("size", len(content)).
			Msg("attachment below minimum size, dropping")
		return Attachment{}, false
	}

	if !allowedImageTypes[contentType] {
		e.log.Debug().Str("filename", filename).Str("content_type", contentType).
			Msg("attachment is not an allowed image type, dropping")
		return Attachment{}, false
	}

	return Attachment{
		Filename:         filename,
		ContentType:      contentType,
		TransferEncoding: encoding,
		Content:          content,
	}, true
}
