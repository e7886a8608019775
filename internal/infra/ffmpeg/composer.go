package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"go.uber.org/zap"
)

// Composer implements port.Composer: each retained range is cut out of
// the source with a re-encode for frame accuracy, then the clips are
// joined with the concat demuxer without another re-encode.
type Composer struct {
	videoCodec string
	audioCodec string
	crf        int
	logger     *zap.Logger
}

func NewComposer(videoCodec, audioCodec string, crf int, logger *zap.Logger) *Composer {
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	if audioCodec == "" {
		audioCodec = "aac"
	}
	if crf == 0 {
		crf = 23
	}
	return &Composer{
		videoCodec: videoCodec,
		audioCodec: audioCodec,
		crf:        crf,
		logger:     logger,
	}
}

func (c *Composer) Compose(ctx context.Context, sourcePath string, ranges []entity.TimeRange, outputPath string) error {
	if len(ranges) == 0 {
		return fmt.Errorf("no ranges to compose")
	}

	clipDir, err := os.MkdirTemp(filepath.Dir(outputPath), "clips-")
	if err != nil {
		return fmt.Errorf("create clip dir: %w", err)
	}
	defer os.RemoveAll(clipDir)

	clips := make([]string, 0, len(ranges))
	for i, r := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		clipPath := filepath.Join(clipDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := c.extractClip(ctx, sourcePath, r, clipPath); err != nil {
			return fmt.Errorf("extract clip %d [%.2f,%.2f): %w", i, r.Start, r.End, err)
		}
		clips = append(clips, clipPath)
	}

	if err := c.concat(ctx, clips, outputPath); err != nil {
		return fmt.Errorf("concat clips: %w", err)
	}

	c.logger.Info("highlight composed",
		zap.Int("clips", len(clips)),
		zap.String("output", outputPath),
	)
	return nil
}

func (c *Composer) extractClip(ctx context.Context, sourcePath string, r entity.TimeRange, clipPath string) error {
	return runFFmpeg(ctx,
		"-i", sourcePath,
		"-ss", fmt.Sprintf("%.3f", r.Start),
		"-t", fmt.Sprintf("%.3f", r.Duration()),
		"-c:v", c.videoCodec,
		"-c:a", c.audioCodec,
		"-crf", fmt.Sprintf("%d", c.crf),
		"-y", clipPath,
	)
}

func (c *Composer) concat(ctx context.Context, clips []string, outputPath string) error {
	listFile, err := os.CreateTemp(filepath.Dir(outputPath), "concat-*.txt")
	if err != nil {
		return err
	}
	defer os.Remove(listFile.Name())

	for _, clip := range clips {
		absPath, err := filepath.Abs(clip)
		if err != nil {
			listFile.Close()
			return err
		}
		if _, err := fmt.Fprintf(listFile, "file '%s'\n", absPath); err != nil {
			listFile.Close()
			return err
		}
	}
	if err := listFile.Close(); err != nil {
		return err
	}

	return runFFmpeg(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		"-y", outputPath,
	)
}
