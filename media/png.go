package media

import (
	"image"
	"image/png"
	"io"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/vaht"
)

// Image builds an RGBA image from packed 24-bit RGB rows.
func Image(width, height int, rgb []byte) (*image.RGBA, error) {
	if width < 0 || height < 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "negative image size")
	}
	if len(rgb) != width*height*3 {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path("png").
			Detail("got %d bytes of pixel data for %dx%d", len(rgb), width, height).
			Build()
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(rgb); i, j = i+3, j+4 {
		img.Pix[j] = rgb[i]
		img.Pix[j+1] = rgb[i+1]
		img.Pix[j+2] = rgb[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// EncodePNG writes packed RGB pixel data as a PNG.
func EncodePNG(w io.Writer, width, height int, rgb []byte) error {
	img, err := Image(width, height, rgb)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode png")
	}
	return nil
}

// BitmapPNG writes b as a PNG.
func BitmapPNG(w io.Writer, b *vaht.Bitmap) error {
	return EncodePNG(w, int(b.Width()), int(b.Height()), b.Data())
}
