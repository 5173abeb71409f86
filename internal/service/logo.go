package service

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const logoMaxSide = 512

// ResizeLogo scales the uploaded logo down to at most logoMaxSide on its
// longer side and writes the result next to the original.
func ResizeLogo(srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("decoding logo: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= logoMaxSide && h <= logoMaxSide {
		return srcPath, nil
	}

	if w > h {
		h = h * logoMaxSide / w
		w = logoMaxSide
	} else {
		w = w * logoMaxSide / h
		h = logoMaxSide
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	ext := filepath.Ext(srcPath)
	outPath := strings.TrimSuffix(srcPath, ext) + "-resized" + ext

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	switch format {
	case "jpeg":
		err = jpeg.Encode(out, dst, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(out, dst)
	}
	if err != nil {
		return "", fmt.Errorf("encoding logo: %w", err)
	}

	return outPath, nil
}
