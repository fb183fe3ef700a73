package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/hnstories/internal/browser"
	"github.com/matheuskafuri/hnstories/internal/hn"
	"github.com/matheuskafuri/hnstories/internal/stories"
	"github.com/matheuskafuri/hnstories/internal/store"
	"go.uber.org/zap"
)

type focusPane int

const (
	focusSearch focusPane = iota
	focusList
)

type App struct {
	searcher hn.Searcher
	term     *store.SemiPersistent
	logger   *zap.Logger
	timeout  time.Duration

	state  stories.State
	cursor int
	focus  focusPane
	help   bool

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model

	// seq identifies the latest search; results from older ones are dropped.
	seq int
	// cancel aborts the in-flight search once a newer one starts.
	cancel context.CancelFunc
	err    error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Searcher hn.Searcher
	Term     *store.SemiPersistent
	Logger   *zap.Logger
	Timeout  time.Duration
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search stories..."
	ti.Prompt = searchPromptStyle.Render("> ")
	ti.CharLimit = 200
	ti.SetValue(opts.Term.Value())
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = hn.DefaultTimeout
	}

	return &App{
		searcher:    opts.Searcher,
		term:        opts.Term,
		logger:      logger,
		timeout:     timeout,
		focus:       focusSearch,
		searchInput: ti,
		spinner:     sp,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.searchCmd())
}

// dispatch applies action to the story state.
func (a *App) dispatch(action stories.Action) {
	next, err := stories.Reduce(a.state, action)
	if err != nil {
		a.logger.Error("reducing story state", zap.Error(err))
		return
	}
	a.state = next
	if a.cursor >= len(a.state.Data) {
		a.cursor = max(0, len(a.state.Data)-1)
	}
	a.logger.Debug("story state",
		zap.String("action", fmt.Sprintf("%T", action)),
		zap.Bool("loading", a.state.IsLoading),
		zap.Bool("error", a.state.IsError),
		zap.Int("stories", len(a.state.Data)),
	)
}

// searchCmd starts a search for the current term and cancels the one in
// flight, which hands back its rate limit reservation. An empty term issues
// no request and leaves the state and any in-flight search untouched, so
// that search still lands in the list.
func (a *App) searchCmd() tea.Cmd {
	term := a.term.Value()
	if term == "" {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.dispatch(stories.FetchInit{})
	a.seq++
	return tea.Batch(a.fetchCmd(ctx, a.seq, term), a.spinner.Tick)
}

// fetchCmd captures the request state into the closure to avoid races.
func (a *App) fetchCmd(ctx context.Context, seq int, term string) tea.Cmd {
	searcher := a.searcher
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		hits, err := searcher.Search(ctx, term)
		if err != nil {
			return storiesErrMsg{seq: seq, err: err}
		}
		return storiesLoadedMsg{seq: seq, stories: hits}
	}
}

// setTerm persists a changed term and searches for it.
func (a *App) setTerm(v string) tea.Cmd {
	if v == a.term.Value() {
		return nil
	}
	if err := a.term.Set(v); err != nil {
		a.logger.Warn("persisting search term", zap.Error(err))
		a.err = fmt.Errorf("saving search term: %w", err)
	}
	return a.searchCmd()
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return statusErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.searchInput.Width = max(10, msg.Width-12)
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case storiesLoadedMsg:
		if msg.seq != a.seq {
			a.logger.Debug("dropping stale results", zap.Int("seq", msg.seq), zap.Int("latest", a.seq))
			return a, nil
		}
		a.dispatch(stories.FetchSuccess{Stories: msg.stories})
		return a, nil

	case storiesErrMsg:
		if msg.seq != a.seq {
			a.logger.Debug("dropping stale failure", zap.Int("seq", msg.seq), zap.Int("latest", a.seq))
			return a, nil
		}
		a.logger.Warn("fetching stories", zap.Error(msg.err))
		a.dispatch(stories.FetchFailure{})
		return a, nil

	case statusErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.state.IsLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.help {
		switch msg.String() {
		case "?", "esc", "q":
			a.help = false
		}
		return a, nil
	}

	if a.focus == focusSearch {
		return a.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.state.Data)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(a.state.Data)-1)
		return a, nil
	case "d", "x", "delete":
		if a.cursor < len(a.state.Data) {
			item := a.state.Data[a.cursor]
			a.logger.Debug("dismiss", zap.String("objectID", string(item.ObjectID)), zap.String("title", item.Title))
			a.dispatch(stories.RemoveStory{Story: item})
		}
		return a, nil
	case "o", "enter":
		if a.cursor < len(a.state.Data) {
			return a, openBrowserCmd(a.state.Data[a.cursor].URL)
		}
		return a, nil
	case "/", "tab":
		a.focus = focusSearch
		return a, a.searchInput.Focus()
	case "?":
		a.help = true
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		a.focus = focusList
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only search on actual value changes, not cursor moves etc.
	return a, tea.Batch(cmd, a.setTerm(a.searchInput.Value()))
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  hnstories")
	}

	if a.help {
		return a.renderHelp()
	}

	header := headerStyle.Render("My Hacker Stories")
	search := searchLabelStyle.Render("Search:") + " " + a.searchInput.View()
	rule := ruleStyle.Render(strings.Repeat("─", a.width))

	// header + search + rule + status + list borders
	contentHeight := a.height - 4 - 2

	var notice string
	if a.state.IsError {
		notice = errorStyle.Render("Something went wrong ...")
		contentHeight--
	}
	if contentHeight < 3 {
		contentHeight = 3
	}

	var body string
	if a.state.IsLoading {
		body = loadingStyle.Render(a.spinner.View() + " Loading ...")
	} else {
		listContent := renderList(a.state.Data, a.cursor, contentHeight, a.width-4)
		style := listPaneStyle
		if a.focus == focusList {
			style = listPaneActiveStyle
		}
		body = style.Width(a.width - 2).Height(contentHeight).Render(listContent)
	}

	status := renderStatusBar(len(a.state.Data), a.term.Value(), a.width, a.focus == focusSearch, a.state.IsLoading)
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	parts := []string{header, search, rule}
	if notice != "" {
		parts = append(parts, notice)
	}
	parts = append(parts, body, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("hnstories")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Search") + "\n" +
		"  /, tab        Edit the search term\n" +
		"  esc, enter    Back to the list\n\n" +
		dim.Render("List") + "\n" +
		"  j/k, ↑/↓     Move between stories\n" +
		"  g/G           First / last story\n" +
		"  d, x          Dismiss story\n" +
		"  o, enter      Open story in browser\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
