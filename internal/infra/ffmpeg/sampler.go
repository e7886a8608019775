package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"go.uber.org/zap"
)

// Sampler implements port.FrameSource by shelling out to ffmpeg. One
// frame is extracted per stride second; frames are handed out lazily,
// one file at a time, and each Release removes the backing file.
type Sampler struct {
	stride    float64
	maxFrames int
	format    string
	tempDir   string
	logger    *zap.Logger
}

func NewSampler(stride float64, maxFrames int, format, tempDir string, logger *zap.Logger) *Sampler {
	return &Sampler{
		stride:    stride,
		maxFrames: maxFrames,
		format:    format,
		tempDir:   tempDir,
		logger:    logger,
	}
}

func (s *Sampler) Probe(ctx context.Context, videoPath string) (port.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "format=duration:stream=width,height,r_frame_rate",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return port.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}

	var info port.VideoInfo
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "duration":
			info.Duration, _ = strconv.ParseFloat(value, 64)
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "r_frame_rate":
			info.FPS = parseFrameRate(value)
		}
	}
	if info.Duration <= 0 {
		return port.VideoInfo{}, fmt.Errorf("ffprobe: no duration for %s", videoPath)
	}
	return info, nil
}

func (s *Sampler) Stream(ctx context.Context, videoPath string) (port.FrameStream, error) {
	info, err := s.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(s.tempDir, "frames-")
	if err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	framePattern := filepath.Join(workDir, fmt.Sprintf("frame_%%05d.%s", s.format))
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%g", s.stride),
	}
	if s.maxFrames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(s.maxFrames))
	}
	args = append(args, "-y", framePattern)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	paths, err := filepath.Glob(filepath.Join(workDir, fmt.Sprintf("*.%s", s.format)))
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(paths) == 0 {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("no frames extracted from %s", videoPath)
	}
	sort.Strings(paths)

	s.logger.Info("frames sampled",
		zap.Int("count", len(paths)),
		zap.Float64("stride", s.stride),
		zap.Float64("video_duration", info.Duration),
	)

	return &frameStream{
		paths:    paths,
		stride:   s.stride,
		duration: info.Duration,
		workDir:  workDir,
	}, nil
}

type frameStream struct {
	paths    []string
	stride   float64
	duration float64
	workDir  string
	idx      int
}

func (st *frameStream) Next(ctx context.Context) (*port.RawFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if st.idx >= len(st.paths) {
		return nil, io.EOF
	}

	path := st.paths[st.idx]
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", path, err)
	}

	frame := &port.RawFrame{
		Payload:       payload,
		Timestamp:     float64(st.idx) * st.stride,
		Index:         st.idx,
		VideoDuration: st.duration,
		ReleaseFunc: func() error {
			return os.Remove(path)
		},
	}
	st.idx++
	return frame, nil
}

func (st *frameStream) Close() error {
	return os.RemoveAll(st.workDir)
}

// parseFrameRate turns ffprobe's "30000/1001" form into a float.
func parseFrameRate(raw string) float64 {
	num, den, ok := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
