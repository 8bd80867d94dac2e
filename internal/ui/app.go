package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/vpick/internal/config"
	"github.com/five82/vpick/internal/state"
)

// screen is the active top-level view.
type screen int

const (
	screenMakes screen = iota
	screenDetail
)

// Dispatcher is the only way the UI changes state.
type Dispatcher interface {
	Dispatch(state.Action) error
}

// Options configures the UI.
type Options struct {
	Store     *state.Store
	Selectors *state.Selectors
	ThemeName string
	PrefsPath string
	Logger    *zap.SugaredLogger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	dispatcher Dispatcher
	prefsPath  string
	logger     *zap.SugaredLogger
	keys       keyMap

	// UI state
	theme    Theme
	screen   screen
	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Data state
	data viewData

	// Makes list state
	selected  int
	searching bool
	search    textinput.Model

	// Detail state
	detail viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = config.DefaultPrefsPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "filter makes"
	search.CharLimit = 64

	var dispatcher Dispatcher
	if opts.Store != nil {
		dispatcher = opts.Store
	}

	return Model{
		dispatcher: dispatcher,
		prefsPath:  prefsPath,
		logger:     logger,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(themeName),
		screen:     screenMakes,
		search:     search,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detail = viewport.New(msg.Width, m.bodyHeight())
		}
		m.ready = true
		m.search.Width = max(msg.Width-4, 10)
		m.updateDetailViewport()
		return m, nil

	case viewMsg:
		m.data = viewData(msg)
		m.clampSelection()
		m.updateDetailViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if err := config.SavePrefs(m.prefsPath, config.Prefs{Theme: m.theme.Name}); err != nil {
			m.logger.Warnw("save prefs failed", "error", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.dispatch(state.LoadMakes{})
		return m, nil

	case key.Matches(msg, m.keys.ClearTypes):
		m.dispatch(state.ClearTypesCache{})
		m.notice = "types cache cleared"
		return m, nil

	case key.Matches(msg, m.keys.ClearModels):
		m.dispatch(state.ClearModelsCache{})
		m.notice = "models cache cleared"
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		m.dispatch(state.ClearAllCache{})
		m.notice = "all caches cleared"
		m.screen = screenMakes
		return m, nil
	}

	switch m.screen {
	case screenDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleMakesKey(msg)
	}
}

// handleMakesKey processes keyboard input for the makes list.
func (m Model) handleMakesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.data.makes)

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.data.search)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.data.search != "" {
			m.search.SetValue("")
			m.dispatch(state.ClearSearchTerm{})
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if count == 0 {
			return m, nil
		}
		m.openMake(m.data.makes[m.selected].ID)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < count-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(count-1, 0)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selected = min(m.selected+m.listHeight()/2, max(count-1, 0))
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selected = max(m.selected-m.listHeight()/2, 0)
	}
	return m, nil
}

// handleSearchKey routes keys to the search input and mirrors its value
// into the store on every change.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.dispatch(state.ClearSearchTerm{})
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		if after == "" {
			m.dispatch(state.ClearSearchTerm{})
		} else {
			m.dispatch(state.SetSearchTerm{Term: after})
		}
		m.selected = 0
	}
	return m, cmd
}

// handleDetailKey processes keyboard input for the make detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.screen = screenMakes
		return m, nil
	case key.Matches(msg, m.keys.Open):
		// Re-request: a loaded key is answered from cache, a failed one retries.
		if m.data.hasCurrent {
			m.openMake(m.data.currentID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.detail.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.detail.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.detail.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detail.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.HalfPageUp()
	}
	return m, nil
}

// openMake requests the types and models of makeID and shows its detail.
func (m *Model) openMake(makeID int) {
	m.notice = ""
	if !m.dispatch(state.LoadTypesForMake{MakeID: makeID}) {
		return
	}
	m.dispatch(state.LoadModelsForMake{MakeID: makeID})
	m.screen = screenDetail
	m.detail.GotoTop()
}

// dispatch sends a to the store and reports success. Failures surface in
// the status bar.
func (m *Model) dispatch(a state.Action) bool {
	if m.dispatcher == nil {
		return false
	}
	if err := m.dispatcher.Dispatch(a); err != nil {
		m.logger.Warnw("dispatch failed", "action", a.ActionKind().String(), "error", err)
		m.notice = err.Error()
		return false
	}
	return true
}

func (m *Model) clampSelection() {
	count := len(m.data.makes)
	if m.selected >= count {
		m.selected = max(count-1, 0)
	}
}

// Run starts the Bubble Tea program and feeds it store changes until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("ui requires a store")
	}
	if opts.Selectors == nil {
		sel, err := state.NewSelectors(0)
		if err != nil {
			return err
		}
		opts.Selectors = sel
	}

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for v := range state.Watch(watchCtx, opts.Store, selectView(opts.Selectors), sameView) {
			p.Send(viewMsg(v))
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
