package mailparse

import (
	"regexp"
)

type (
	// PartClassifier decides whether a MIME fragment looks like an image
	// attachment worth decoding. Classifiers run as an ordered chain; the
	// first match wins.
	PartClassifier interface {
		Matches(part string) bool
	}

	imageContentTypeClassifier struct{}
	dispositionClassifier      struct{}
	imageFilenameClassifier    struct{}
)

var (
	imageContentTypePattern = regexp.MustCompile(`(?i)Content-Type:\s*image/`)
	dispositionPattern      = regexp.MustCompile(`(?i)Content-Disposition:\s*(attachment|inline)`)
	imageFilenamePattern    = regexp.MustCompile(`(?i)filename[=: ]+["']?[^"'\r\n;]*\.(jpe?g|png|gif|webp)`)
)

// DefaultClassifiers is the chain used for inbound email. Order matters only
// for short-circuiting; a part matching any classifier is kept.
func DefaultClassifiers() []PartClassifier {
	return []PartClassifier{
		imageContentTypeClassifier{},
		dispositionClassifier{},
		imageFilenameClassifier{},
	}
}

func (imageContentTypeClassifier) Matches(part string) bool {
	return imageContentTypePattern.MatchString(part)
}

func (dispositionClassifier) Matches(part string) bool {
	return dispositionPattern.MatchString(part)
}

func (imageFilenameClassifier) Matches(part string) bool {
	return imageFilenamePattern.MatchString(part)
}
