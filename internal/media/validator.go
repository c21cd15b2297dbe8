package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registered so non-JPEG submissions are reported as unsupported rather
	// than unreadable.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// MinDimension is the minimum accepted width and height in pixels.
const MinDimension = 128

// ErrUnreadable means the payload could not be decoded as an image at all.
var ErrUnreadable = errors.New("the request body could not be parsed as an image")

// UnsupportedFormatError means the image decoded but is not a JPEG.
type UnsupportedFormatError struct {
	Format string
	MIME   string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("endpoint only accepts JPEG encoded images, received %s (%s)", e.Format, e.MIME)
}

// TooSmallError means one or both dimensions are below MinDimension.
type TooSmallError struct {
	Width  int
	Height int
}

func (e *TooSmallError) Error() string {
	return fmt.Sprintf("image dimensions must be at least %d x %d pixels but received an image of size %d x %d pixels",
		MinDimension, MinDimension, e.Width, e.Height)
}

// Decoded is a validated image handle with its dimensions and encoded format.
type Decoded struct {
	Image  image.Image
	Width  int
	Height int
	Format string
}

// Validate decodes data and checks that it is a JPEG of at least
// MinDimension x MinDimension pixels. Synchronous and side-effect-free.
func Validate(data []byte) (*Decoded, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if format != "jpeg" {
		return nil, &UnsupportedFormatError{Format: format, MIME: mimeFor(format)}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < MinDimension || h < MinDimension {
		return nil, &TooSmallError{Width: w, Height: h}
	}

	return &Decoded{Image: img, Width: w, Height: h, Format: format}, nil
}

func mimeFor(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/" + format
	}
}
