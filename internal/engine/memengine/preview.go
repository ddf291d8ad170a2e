package memengine

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
)

const (
	previewWidth  = 480
	previewHeight = 320
	thumbSize     = 140
)

// renderPreview draws the selection summary and up to two attached label images into a
// PNG data URL.
func renderPreview(lines []string, art [][]byte) (string, error) {
	dc := gg.NewContext(previewWidth, previewHeight)
	dc.SetColor(color.RGBA{R: 0xf6, G: 0xf1, B: 0xe9, A: 0xff})
	dc.DrawRectangle(0, 0, previewWidth, previewHeight)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff})
	y := 28.0
	for _, line := range lines {
		dc.DrawString(line, 20, y)
		y += 20
	}

	x := 20
	drawn := 0
	for _, raw := range art {
		if drawn == 2 {
			break
		}
		src, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			continue
		}
		dst := image.NewRGBA(image.Rect(0, 0, thumbSize, thumbSize))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		dc.DrawImage(dst, x, previewHeight-thumbSize-20)
		x += thumbSize + 20
		drawn++
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
