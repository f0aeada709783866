// Package ebiten draws the emulator's scope framebuffer with Ebiten.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emsaa/emu"
)

// Scope renders a cached RGBA scope image into an Ebiten screen.
type Scope struct {
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewScope creates a scope view.
func NewScope() *Scope {
	return &Scope{}
}

// Layout implements part of ebiten.Game; the screen follows the window.
func (s *Scope) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Draw scales the image to fit screen, keeping its aspect ratio, using
// nearest-neighbour filtering. Incomplete images are skipped.
func (s *Scope) Draw(screen *ebiten.Image, pixels []byte, stride, height int) {
	if height == 0 || stride != emu.ScreenWidth*4 {
		return
	}
	required := stride * height
	if len(pixels) < required {
		return
	}

	if s.offscreen == nil || s.offscreen.Bounds().Dy() != height {
		s.offscreen = ebiten.NewImage(emu.ScreenWidth, height)
	}
	s.offscreen.WritePixels(pixels[:required])

	scale, offsetX, offsetY := fit(screen.Bounds().Dx(), screen.Bounds().Dy(), emu.ScreenWidth, height)

	s.drawOpts = ebiten.DrawImageOptions{}
	s.drawOpts.GeoM.Scale(scale, scale)
	s.drawOpts.GeoM.Translate(offsetX, offsetY)
	s.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(s.offscreen, &s.drawOpts)
}

// fit returns the uniform scale and centring offsets that place a w×h
// image inside a screenW×screenH screen.
func fit(screenW, screenH, w, h int) (scale, offsetX, offsetY float64) {
	scaleX := float64(screenW) / float64(w)
	scaleY := float64(screenH) / float64(h)
	scale = scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	offsetX = (float64(screenW) - float64(w)*scale) / 2
	offsetY = (float64(screenH) - float64(h)*scale) / 2
	return
}
