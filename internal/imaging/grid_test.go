package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestGridOverlay(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{128, 128, 128, 255})

	result := GridOverlay(img, 25, color.NRGBA{255, 0, 0, 255}, false)

	if result.Bounds().Dx() != 100 || result.Bounds().Dy() != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestGridOverlay_GridLines(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 0, 255})

	result := GridOverlay(img, 25, color.NRGBA{255, 0, 0, 255}, false)

	if got := result.RGBAAt(25, 50); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("grid line color at (25,50): got %v, want red", got)
	}
	if got := result.RGBAAt(50, 75); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("grid line color at (50,75): got %v, want red", got)
	}
	if got := result.RGBAAt(15, 15); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("background at (15,15): got %v, want black", got)
	}
	if got := result.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("no line at the image edge, got %v", got)
	}
}

func TestGridOverlay_Translucent(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{0, 0, 255, 255})

	result := GridOverlay(img, 5, color.NRGBA{255, 0, 0, 128}, false)

	got := result.RGBAAt(5, 2)
	if got.R == 0 || got.B == 0 {
		t.Errorf("translucent line should blend red over blue, got %v", got)
	}
}

func TestGridOverlay_DefaultColor(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255})

	result := GridOverlay(img, 10, nil, false)

	if got := result.RGBAAt(10, 3); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("default line color: got %v, want red", got)
	}
}

func TestGridOverlay_WithLabels(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 0, 255})

	plain := GridOverlay(img, 50, color.NRGBA{255, 0, 0, 255}, false)
	labeled := GridOverlay(img, 50, color.NRGBA{255, 0, 0, 255}, true)

	differs := false
	for y := 52; y < 66 && !differs; y++ {
		for x := 52; x < 80; x++ {
			if plain.RGBAAt(x, y) != labeled.RGBAAt(x, y) {
				differs = true
				break
			}
		}
	}
	if !differs {
		t.Error("expected a label to be drawn next to (50,50)")
	}
}

func TestGridOverlay_KeepsSource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	GridOverlay(img, 2, color.NRGBA{255, 255, 255, 255}, true)

	if got := img.RGBAAt(2, 2); got != (color.RGBA{}) {
		t.Errorf("source image was modified: %v", got)
	}
}
