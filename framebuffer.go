package colorconv

import (
	"encoding/binary"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// EncodeImage returns raw RGB565 buffer of img, two bytes per pixel in order,
// rows top to bottom, and the encoded dimensions. When width or height is not
// zero img is resized first, a zero dimension preserves aspect ratio.
// Alpha is ignored.
func EncodeImage(img image.Image, width, height int, order binary.ByteOrder) ([]byte, image.Point) {

	var src *image.NRGBA
	if width > 0 || height > 0 {
		src = imaging.Resize(img, width, height, imaging.Lanczos)
	} else {
		src = imaging.Clone(img)
	}

	bou := src.Bounds()
	out := make([]byte, bou.Dx()*bou.Dy()*2)
	n := 0
	for y := 0; y < bou.Dy(); y++ {
		// Pix holds the image's pixels, in R, G, B, A order.
		row := src.Pix[y*src.Stride : y*src.Stride+bou.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			order.PutUint16(out[n:], uint16(ToColor565(row[i], row[i+1], row[i+2])))
			n += 2
		}
	}
	return out, bou.Size()
}

// EncodeImageFile decodes image file src, encodes it with EncodeImage and
// writes buffer to dst. Returns dimensions of encoded image.
func EncodeImageFile(src, dst string, width, height int, order binary.ByteOrder) (image.Point, error) {

	img, err := imaging.Open(src)
	if err != nil {
		return image.Point{}, err
	}

	buf, size := EncodeImage(img, width, height, order)
	if err := os.WriteFile(dst, buf, 0666); err != nil {
		return image.Point{}, err
	}
	return size, nil
}
