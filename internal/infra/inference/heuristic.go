package inference

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	// Frame payloads arrive as encoded images.
	_ "image/jpeg"
	_ "image/png"

	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"go.uber.org/zap"
)

// HeuristicModel scores frames with cheap image statistics instead of a
// real classifier: colorfulness, contrast and brightness blended into
// one aesthetic score. It emits no labels and full confidence, so the
// decision engine falls back to its aesthetic rule.
type HeuristicModel struct {
	logger *zap.Logger
}

func NewHeuristicModel(logger *zap.Logger) *HeuristicModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeuristicModel{logger: logger}
}

func (m *HeuristicModel) Load(ctx context.Context) error {
	return nil
}

func (m *HeuristicModel) Annotate(ctx context.Context, payload []byte) (port.Annotation, error) {
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return port.Annotation{}, fmt.Errorf("decode frame image: %w", err)
	}

	colorfulness := colorfulness(img)
	contrast := contrast(img)
	brightness := brightness(img)

	score := 0.4*colorfulness + 0.3*contrast + 0.3*brightness
	score = math.Max(0, math.Min(1, score))

	m.logger.Debug("heuristic annotation",
		zap.Float64("colorfulness", colorfulness),
		zap.Float64("contrast", contrast),
		zap.Float64("brightness", brightness),
		zap.Float64("score", score),
	)

	return port.Annotation{Confidence: 1, AestheticScore: score}, nil
}

func colorfulness(img image.Image) float64 {
	bounds := img.Bounds()
	var rSum, gSum, bSum float64
	pixels := float64(bounds.Dx() * bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += float64(r >> 8)
			gSum += float64(g >> 8)
			bSum += float64(b >> 8)
		}
	}

	rMean := rSum / pixels
	gMean := gSum / pixels
	bMean := bSum / pixels

	variance := math.Abs(rMean-gMean) + math.Abs(gMean-bMean) + math.Abs(bMean-rMean)
	return math.Min(1.0, variance/255.0)
}

func contrast(img image.Image) float64 {
	bounds := img.Bounds()
	var lumSum, lumSqSum float64
	pixels := float64(bounds.Dx() * bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			lum := luminance(img.At(x, y).RGBA())
			lumSum += lum
			lumSqSum += lum * lum
		}
	}

	mean := lumSum / pixels
	variance := (lumSqSum / pixels) - (mean * mean)
	stdDev := math.Sqrt(math.Max(0, variance))

	// Typical luminance stddev tops out around 60.
	return math.Min(1.0, stdDev/60.0)
}

func brightness(img image.Image) float64 {
	bounds := img.Bounds()
	var lumSum float64
	pixels := float64(bounds.Dx() * bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			lumSum += luminance(img.At(x, y).RGBA())
		}
	}

	// Moderate brightness scores best; very dark or blown-out frames
	// fall off linearly.
	deviation := math.Abs(lumSum/pixels - 128.0)
	return 1.0 - math.Min(1.0, deviation/128.0)
}

func luminance(r, g, b, _ uint32) float64 {
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}
