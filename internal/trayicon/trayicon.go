// Package trayicon draws the battery icons shown in the notification area.
// Icons are rendered once per kind and returned as .ico files with a PNG
// payload, which is what the tray loads on Windows.
package trayicon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/powerplanchanger/ppc/internal/status"
)

// Size is the edge length of the rendered icon in pixels.
const Size = 32

var (
	outline   = color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	high      = color.NRGBA{R: 0x3c, G: 0xb3, B: 0x4a, A: 0xff}
	medium    = color.NRGBA{R: 0xf2, G: 0xa2, B: 0x1b, A: 0xff}
	low       = color.NRGBA{R: 0xd9, G: 0x34, B: 0x2b, A: 0xff}
	bolt      = color.NRGBA{R: 0xff, G: 0xe0, B: 0x3d, A: 0xff}
	inactive  = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	iconCache sync.Map // status.IconKind -> []byte
)

// Render returns the .ico bytes for kind.
func Render(kind status.IconKind) ([]byte, error) {
	if b, ok := iconCache.Load(kind); ok {
		return b.([]byte), nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Draw(kind)); err != nil {
		return nil, fmt.Errorf("failed to encode %s icon: %w", kind, err)
	}
	ico := wrapICO(buf.Bytes(), Size)
	iconCache.Store(kind, ico)
	return ico, nil
}

// Draw renders kind as an image.
func Draw(kind status.IconKind) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size))

	// Body from (2,8) to (27,24), terminal nub on the right.
	body := image.Rect(2, 8, 28, 24)
	frame := outline
	if kind.Variant == status.VariantUnknown || kind.Variant == status.VariantNoBattery {
		frame = inactive
	}
	strokeRect(img, body, frame)
	fillRect(img, image.Rect(28, 12, 31, 20), frame)

	switch kind.Variant {
	case status.VariantCharging, status.VariantDischarging:
		inner := body.Inset(3)
		w := inner.Dx() * (kind.Level + 1) / 10
		fillRect(img, image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+w, inner.Max.Y), levelColor(kind.Level))
		if kind.Variant == status.VariantCharging {
			drawBolt(img)
		}
	case status.VariantNoBattery:
		for i := 0; i < body.Dy(); i++ {
			x := body.Min.X + i*body.Dx()/body.Dy()
			fillRect(img, image.Rect(x, body.Max.Y-1-i, x+2, body.Max.Y-i), low)
		}
	default:
		// Question mark.
		fillRect(img, image.Rect(12, 11, 18, 13), inactive)
		fillRect(img, image.Rect(16, 13, 18, 16), inactive)
		fillRect(img, image.Rect(14, 16, 17, 18), inactive)
		fillRect(img, image.Rect(14, 19, 16, 21), inactive)
	}
	return img
}

func levelColor(level int) color.NRGBA {
	switch {
	case level <= 1:
		return low
	case level <= 3:
		return medium
	default:
		return high
	}
}

func drawBolt(img *image.NRGBA) {
	fillRect(img, image.Rect(15, 9, 18, 11), bolt)
	fillRect(img, image.Rect(13, 11, 17, 15), bolt)
	fillRect(img, image.Rect(11, 15, 21, 17), bolt)
	fillRect(img, image.Rect(15, 17, 19, 21), bolt)
	fillRect(img, image.Rect(14, 21, 17, 23), bolt)
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func strokeRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+2), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-2, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+2, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-2, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// wrapICO wraps a PNG image in a single-entry ICONDIR.
func wrapICO(pngData []byte, size int) []byte {
	const headerLen = 6 + 16
	out := make([]byte, headerLen, headerLen+len(pngData))

	binary.LittleEndian.PutUint16(out[0:], 0) // reserved
	binary.LittleEndian.PutUint16(out[2:], 1) // type: icon
	binary.LittleEndian.PutUint16(out[4:], 1) // count

	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	out[6] = dim
	out[7] = dim
	out[8] = 0 // palette
	out[9] = 0
	binary.LittleEndian.PutUint16(out[10:], 1)  // planes
	binary.LittleEndian.PutUint16(out[12:], 32) // bpp
	binary.LittleEndian.PutUint32(out[14:], uint32(len(pngData)))
	binary.LittleEndian.PutUint32(out[18:], headerLen)

	return append(out, pngData...)
}
