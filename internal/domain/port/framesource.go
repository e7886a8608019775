package port

import "context"

// VideoInfo is the probed geometry of a source video.
type VideoInfo struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
}

// RawFrame is one sampled frame with its raw image payload. The consumer
// owns the payload and must call Release as soon as decisioning is done;
// holding payloads past that point is a resource leak.
type RawFrame struct {
	Payload       []byte
	Timestamp     float64
	Index         int
	VideoDuration float64

	ReleaseFunc func() error
}

// Release drops the payload and frees whatever backs it. Safe to call
// more than once.
func (f *RawFrame) Release() error {
	f.Payload = nil
	if f.ReleaseFunc == nil {
		return nil
	}
	fn := f.ReleaseFunc
	f.ReleaseFunc = nil
	return fn()
}

// FrameStream yields frames in strictly increasing timestamp order.
// Next returns io.EOF once the stream is exhausted. A stream is not
// restartable; a fresh Stream call yields a fresh sequence.
type FrameStream interface {
	Next(ctx context.Context) (*RawFrame, error)
	Close() error
}

type FrameSource interface {
	Probe(ctx context.Context, videoPath string) (VideoInfo, error)
	Stream(ctx context.Context, videoPath string) (FrameStream, error)
}
