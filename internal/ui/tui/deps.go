package tui

import (
	"log/slog"

	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

type Deps struct {
	ProjectLocator     ports.ProjectLocator
	ProjectInitializer ports.ProjectInitializer

	Logger *slog.Logger
	Debug  bool
}
