package ports

import (
	"context"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// StructureGenerator produces one candidate structure per call. It returns an
// error of kind generation_exhausted when it cannot produce any more.
type StructureGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.Structure, error)
}
