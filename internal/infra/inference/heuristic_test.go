package inference

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func flatImage(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestHeuristicAnnotateFlatGray(t *testing.T) {
	model := NewHeuristicModel(nil)
	require.NoError(t, model.Load(context.Background()))

	payload := encodePNG(t, flatImage(color.RGBA{R: 128, G: 128, B: 128, A: 255}))
	a, err := model.Annotate(context.Background(), payload)
	require.NoError(t, err)

	// No color variance, no contrast, ideal brightness: 0.3 from the
	// brightness term alone.
	assert.Empty(t, a.Labels)
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
	assert.InDelta(t, 0.3, a.AestheticScore, 0.02)
}

func TestHeuristicAnnotateBlackScoresLow(t *testing.T) {
	model := NewHeuristicModel(nil)

	payload := encodePNG(t, flatImage(color.RGBA{A: 255}))
	a, err := model.Annotate(context.Background(), payload)
	require.NoError(t, err)

	assert.Less(t, a.AestheticScore, 0.05)
}

func TestHeuristicAnnotateColorfulBeatsFlat(t *testing.T) {
	model := NewHeuristicModel(nil)

	checker := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x+y)%2 == 0 {
				checker.Set(x, y, color.RGBA{R: 255, G: 64, A: 255})
			} else {
				checker.Set(x, y, color.RGBA{G: 200, B: 255, A: 255})
			}
		}
	}

	colorful, err := model.Annotate(context.Background(), encodePNG(t, checker))
	require.NoError(t, err)
	flat, err := model.Annotate(context.Background(), encodePNG(t, flatImage(color.RGBA{R: 128, G: 128, B: 128, A: 255})))
	require.NoError(t, err)

	assert.Greater(t, colorful.AestheticScore, flat.AestheticScore)
}

func TestHeuristicAnnotateRejectsGarbage(t *testing.T) {
	model := NewHeuristicModel(nil)

	_, err := model.Annotate(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}
