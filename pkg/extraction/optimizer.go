package extraction

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

const (
	// optimizeThreshold is the size below which bytes are submitted as-is.
	optimizeThreshold = 500 * 1024
	// maxDimension bounds the longer side after resizing.
	maxDimension = 1600
	jpegQuality  = 80
)

// Optimizer keeps receipt photos small enough for the vision endpoint
// without discarding the detail needed to read line items.
type Optimizer struct {
	log zerolog.Logger
}

func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{log: log.With().Str("component", "optimizer").Logger()}
}

// Optimize resizes and recompresses data when it exceeds the threshold. A
// decode or encode failure falls back to the original bytes: an oversized
// but valid image beats no image.
func (o *Optimizer) Optimize(data []byte) []byte {
	if len(data) <= optimizeThreshold {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		o.log.Warn().Err(err).Int("size", len(data)).Msg("image decode failed, submitting original bytes")
		return data
	}

	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		o.log.Warn().Err(err).Msg("jpeg encode failed, submitting original bytes")
		return data
	}

	o.log.Debug().
		Int("original_size", len(data)).
		Int("optimized_size", buf.Len()).
		Msg("receipt image optimized")
	return buf.Bytes()
}
