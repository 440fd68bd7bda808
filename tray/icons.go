//go:build darwin

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

var (
	iconIdle    []byte
	iconIdleHi  []byte
	iconShownHi []byte
	iconOffHi   []byte
)

func init() {
	green := color.RGBA{R: 52, G: 199, B: 89, A: 255}
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	iconIdle = renderGridIcon(22, nil)
	iconIdleHi = renderGridIcon(44, nil)
	iconShownHi = renderGridIcon(44, &green)
	iconOffHi = renderWarnIcon(44, &red)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// drawGrid draws a 2x2 grid of rounded cells, filled when fill is set.
func drawGrid(img *image.RGBA, size int, fill *color.RGBA) {
	s := float64(size)
	gap := s / 11
	cell := (s - 3*gap) / 2
	radius := cell / 5
	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			for _, ox := range []float64{gap, 2*gap + cell} {
				for _, oy := range []float64{gap, 2*gap + cell} {
					if !inRoundedRect(fx-ox, fy-oy, cell, radius) {
						continue
					}
					if fill != nil {
						img.Set(x, y, fill)
					} else {
						img.Set(x, y, color.Black)
					}
				}
			}
		}
	}
}

func inRoundedRect(x, y, side, r float64) bool {
	if x < 0 || y < 0 || x > side || y > side {
		return false
	}
	cx := math.Min(math.Max(x, r), side-r)
	cy := math.Min(math.Max(y, r), side-r)
	return math.Hypot(x-cx, y-cy) <= r
}

func renderGridIcon(size int, fill *color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	drawGrid(img, size, fill)
	return encodePNG(img)
}

func renderWarnIcon(size int, fill *color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	drawGrid(img, size, fill)
	// Small yellow badge with "!" in bottom-right corner
	s := float64(size)
	badgeR := s * 0.34
	badgeCX, badgeCY := s-badgeR+0.5, s-badgeR+0.5
	dark := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	yellow := color.RGBA{R: 255, G: 204, B: 0, A: 255}
	bangHW := badgeR * 0.24

	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if math.Hypot(fx-badgeCX, fy-badgeCY) > badgeR {
				continue
			}
			localY := (fy - (badgeCY - badgeR*0.7)) / (badgeR * 1.4)
			localX := math.Abs(fx - badgeCX)
			isBar := localX <= bangHW && localY >= 0.1 && localY <= 0.62
			isDot := localX <= bangHW && localY >= 0.72 && localY <= 0.85
			if isBar || isDot {
				img.Set(x, y, dark)
			} else {
				img.Set(x, y, yellow)
			}
		}
	}
	return encodePNG(img)
}
