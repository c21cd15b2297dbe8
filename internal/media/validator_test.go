package media

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAcceptsJPEG(t *testing.T) {
	decoded, err := Validate(jpegBytes(t, 200, 150))
	if err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if decoded.Width != 200 || decoded.Height != 150 {
		t.Errorf("dimensions = %dx%d, want 200x150", decoded.Width, decoded.Height)
	}
	if decoded.Format != "jpeg" {
		t.Errorf("format = %q, want jpeg", decoded.Format)
	}
}

func TestValidateAcceptsExactMinimum(t *testing.T) {
	if _, err := Validate(jpegBytes(t, MinDimension, MinDimension)); err != nil {
		t.Fatalf("Validate(128x128) = %v, want nil", err)
	}
}

func TestValidateRejectsTooSmall(t *testing.T) {
	cases := [][2]int{
		{MinDimension - 1, MinDimension},
		{MinDimension, MinDimension - 1},
		{10, 10},
	}
	for _, c := range cases {
		_, err := Validate(jpegBytes(t, c[0], c[1]))
		var tooSmall *TooSmallError
		if !errors.As(err, &tooSmall) {
			t.Fatalf("Validate(%dx%d) = %v, want TooSmallError", c[0], c[1], err)
		}
		if tooSmall.Width != c[0] || tooSmall.Height != c[1] {
			t.Errorf("TooSmallError = %dx%d, want %dx%d", tooSmall.Width, tooSmall.Height, c[0], c[1])
		}
	}
}

func TestValidateRejectsNonJPEG(t *testing.T) {
	_, err := Validate(pngBytes(t, 200, 200))
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Validate(png) = %v, want UnsupportedFormatError", err)
	}
	if unsupported.Format != "png" || unsupported.MIME != "image/png" {
		t.Errorf("detected format = %q (%q), want png (image/png)", unsupported.Format, unsupported.MIME)
	}
}

func TestValidateRejectsUnreadable(t *testing.T) {
	_, err := Validate([]byte("not an image at all"))
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("Validate(garbage) = %v, want ErrUnreadable", err)
	}
}
