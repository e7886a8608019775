package port

import "github.com/DanielSensual/Videoeditor/internal/domain/entity"

// ProgressSink receives pipeline progress synchronously. Implementations
// must not block materially; there is no buffering between the pipeline
// and the sink.
type ProgressSink interface {
	Publish(event entity.ProgressEvent)
}
