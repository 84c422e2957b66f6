// Package tui is the interactive browser: solve a project's problems and
// look through stored runs and their solutions.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenHome screen = iota
	screenProblems
	screenRuns
	screenDetail
)

const (
	menuSolve = "Solve a problem"
	menuRuns  = "Browse runs"
	menuInit  = "Init project here"
	menuQuit  = "Quit"
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type problemItem struct {
	name string
	path string
}

func (p problemItem) Title() string       { return p.name }
func (p problemItem) Description() string { return p.path }
func (p problemItem) FilterValue() string { return p.name }

type runItem struct {
	id      string
	problem string
	desc    string
}

func (r runItem) Title() string       { return r.id }
func (r runItem) Description() string { return r.desc }
func (r runItem) FilterValue() string { return r.problem + " " + r.id }

type model struct {
	theme Theme
	deps  Deps

	scr      screen
	back     screen
	menu     list.Model
	problems list.Model
	runs     list.Model
	detail   viewport.Model
	spin     spinner.Model

	projectFound bool
	projectRoot  string

	running  bool
	toast    string
	toastErr bool
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{menuSolve, "Explore a problem with the project's default profile"},
		menuItem{menuRuns, "Stored runs and their solutions"},
		menuItem{menuInit, "Scaffold sepsolve.yaml, problems/ and profiles/"},
		menuItem{menuQuit, "Exit sepsolve"},
	}

	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "sepsolve"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)

	problems := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	problems.Title = "Problems"
	problems.SetShowHelp(false)

	runs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	runs.Title = "Runs"
	runs.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		theme:    t,
		deps:     deps,
		scr:      screenHome,
		menu:     menu,
		problems: problems,
		runs:     runs,
		detail:   viewport.New(0, 0),
		spin:     sp,
	}

	wd, err := os.Getwd()
	if err == nil && deps.ProjectLocator != nil {
		if root, findErr := deps.ProjectLocator.FindRoot(wd); findErr == nil {
			m.projectFound = true
			m.projectRoot = root
		}
	}

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width-4, msg.Height-10
		m.menu.SetSize(w, h)
		m.problems.SetSize(w, h)
		m.runs.SetSize(w, h)
		m.detail.Width, m.detail.Height = w, h
		return m, nil

	case projectRefreshedMsg:
		m.projectFound, m.projectRoot = msg.found, msg.root
		return m, nil

	case initProjectDoneMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.note("Project initialized at " + msg.root)
		return m, cmdRefreshProject(m.deps)

	case problemsLoadedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, problemItem{name: r.Name, path: r.Path})
		}
		return m, m.problems.SetItems(items)

	case runsLoadedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, runItem{
				id:      r.ID,
				problem: r.Problem,
				desc:    fmt.Sprintf("%s • %d solution(s) • %s", r.Problem, r.Solutions, r.StartedAt.Format("2006-01-02 15:04")),
			})
		}
		return m, m.runs.SetItems(items)

	case runLoadedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.showDetail(renderRun(msg.run), screenRuns)
		return m, nil

	case solveDoneMsg:
		m.running = false
		m.note("")
		if msg.err != nil {
			m.fail(msg.err)
		}
		if !msg.run.StartedAt.IsZero() {
			msg.run.ID = msg.id
			m.showDetail(renderRun(msg.run), screenProblems)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenProblems:
		m.problems, cmd = m.problems.Update(msg)
	case screenRuns:
		m.runs, cmd = m.runs.Update(msg)
	case screenDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m model) filtering() bool {
	switch m.scr {
	case screenProblems:
		return m.problems.FilterState() == list.Filtering
	case screenRuns:
		return m.runs.FilterState() == list.Filtering
	}
	return false
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}
	if m.filtering() {
		return m, nil, false
	}

	switch msg.String() {
	case "q":
		if m.scr == screenHome {
			return m, tea.Quit, true
		}
		m.scr = screenHome
		return m, nil, true

	case "esc", "b":
		switch m.scr {
		case screenDetail:
			m.scr = m.back
			return m, nil, true
		case screenProblems, screenRuns:
			m.scr = screenHome
			return m, nil, true
		}

	case "enter":
		switch m.scr {
		case screenHome:
			it, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil, true
			}
			next, cmd := m.openMenu(it.title)
			return next, cmd, true

		case screenProblems:
			it, ok := m.problems.SelectedItem().(problemItem)
			if !ok || m.running {
				return m, nil, true
			}
			m.running = true
			m.note("Solving " + it.name + "…")
			_, cmd := startSolveAsync(m.projectRoot, it.path, m.deps.Logger, m.deps.Debug)
			return m, tea.Batch(cmd, m.spin.Tick), true

		case screenRuns:
			it, ok := m.runs.SelectedItem().(runItem)
			if !ok {
				return m, nil, true
			}
			return m, cmdLoadRun(m.projectRoot, it.id, m.deps.Logger), true
		}
	}
	return m, nil, false
}

func (m model) openMenu(title string) (model, tea.Cmd) {
	switch title {
	case menuQuit:
		return m, tea.Quit
	case menuInit:
		wd, err := os.Getwd()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		return m, cmdInitProject(m.deps, wd)
	}

	if !m.projectFound {
		m.note("No project found. Choose \"" + menuInit + "\" first.")
		return m, nil
	}
	m.note("")

	switch title {
	case menuSolve:
		m.scr = screenProblems
		return m, cmdLoadProblems(m.projectRoot)
	case menuRuns:
		m.scr = screenRuns
		return m, cmdLoadRuns(m.projectRoot, m.deps.Logger)
	}
	return m, nil
}

func (m *model) note(s string) {
	m.toast = s
	m.toastErr = false
}

func (m *model) fail(err error) {
	m.toast = userMessage(err)
	m.toastErr = true
}

func (m *model) showDetail(content string, back screen) {
	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.back = back
	m.scr = screenDetail
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("sepsolve") + "\n" +
		m.theme.Subtitle.Render("design-space exploration: generate, bind, validate") + "\n"

	var banner string
	if m.projectFound {
		banner = m.theme.Help.Render(fmt.Sprintf("Project: %s", m.projectRoot))
	} else {
		banner = m.theme.Card.Render("⚠ No project found.\n\nChoose \"" + menuInit + "\" to create one.")
	}

	status := ""
	if m.running {
		status = m.theme.Running.Render(m.spin.View()) + " "
	}
	switch {
	case m.toast == "":
	case m.toastErr:
		status += m.theme.Error.Render("✗ " + m.toast)
	default:
		status += m.theme.Toast.Render(m.toast)
	}

	var body, help string
	switch m.scr {
	case screenHome:
		body = m.menu.View()
		help = "↑/↓ navigate • enter open • q quit"
	case screenProblems:
		body = m.problems.View()
		help = "enter solve • / filter • esc back • q home"
	case screenRuns:
		body = m.runs.View()
		help = "enter open • / filter • esc back • q home"
	case screenDetail:
		body = m.detail.View()
		help = "↑/↓ scroll • esc back • q home"
	default:
		body = "unknown state"
	}

	return wrap.Render(header + "\n" + banner + "\n\n" + m.theme.Card.Render(body) + "\n" + status + "\n" + m.theme.Help.Render(help))
}
