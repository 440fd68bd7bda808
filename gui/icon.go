//go:build gui

package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// trayIcon renders a 2x2 grid glyph for the system tray.
func trayIcon() []byte {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fg := color.RGBA{230, 230, 230, 255}
	for y := 2; y < size-2; y++ {
		for x := 2; x < size-2; x++ {
			if x == size/2 || x == size/2-1 || y == size/2 || y == size/2-1 {
				continue
			}
			img.Set(x, y, fg)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("trayIcon: " + err.Error())
	}
	return buf.Bytes()
}
