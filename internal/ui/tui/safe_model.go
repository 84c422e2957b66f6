package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

const crashNotice = "Unexpected error (see .sepsolve/logs/sepsolve.log)"

// safeModel recovers panics raised while handling messages or rendering.
// A panic during Update drops any in-flight solve from the UI and returns
// to the menu; the solve goroutine itself still finishes and saves its run.
type safeModel struct {
	m   model
	log *slog.Logger
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return tea.Batch(s.m.Init(), cmdRefreshProject(s.m.deps))
}

func (s safeModel) logPanic(where string, r any) {
	s.log.Error("tui.panic",
		"where", where,
		"screen", int(s.m.scr),
		"solving", s.m.running,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
}

func (s safeModel) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.logPanic("update", r)

		s.m.scr = screenHome
		s.m.running = false
		s.m.toast = crashNotice
		s.m.toastErr = true
		next, cmd = s, nil
	}()

	inner, c := s.m.Update(msg)
	switch v := inner.(type) {
	case model:
		s.m = v
	case safeModel:
		s = v
	}
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("view", r)
			out = crashNotice
		}
	}()
	return s.m.View()
}

var _ tea.Model = safeModel{}
