package port

import (
	"context"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
)

// Composer cuts the retained ranges out of the source and renders them
// into a single output file. Ranges must be ordered and non-overlapping.
type Composer interface {
	Compose(ctx context.Context, sourcePath string, ranges []entity.TimeRange, outputPath string) error
}
