package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matheuskafuri/hnstories/internal/hn"
	"github.com/matheuskafuri/hnstories/internal/story"
	"github.com/matheuskafuri/hnstories/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV map[string]string

func (m memKV) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Set(key, value string) error {
	m[key] = value
	return nil
}

type fakeSearcher struct {
	terms []string
	hits  []story.Story
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, term string) ([]story.Story, error) {
	f.terms = append(f.terms, term)
	return f.hits, f.err
}

func sampleStories() []story.Story {
	return []story.Story{
		{Title: "React", URL: "https://reactjs.org/", Author: "Jordan Walke", NumComments: 3, Points: 4, ObjectID: "0"},
		{Title: "Redux", URL: "https://redux.js.org/", Author: "Dan Abramov, Andrew Clark", Points: 5, ObjectID: "1"},
		{Title: "Go", URL: "https://go.dev/", Author: "gopher", Points: 9, ObjectID: "2"},
	}
}

func newTestApp(t *testing.T, kv memKV, s *fakeSearcher) *App {
	t.Helper()
	term, err := store.NewSemiPersistent(kv, store.SearchKey, "React")
	require.NoError(t, err)
	return NewApp(RunOpts{Searcher: s, Term: term})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialTerm(t *testing.T) {
	t.Run("defaults when nothing is persisted", func(t *testing.T) {
		a := newTestApp(t, memKV{}, &fakeSearcher{})
		assert.Equal(t, "React", a.searchInput.Value())
	})

	t.Run("restores the persisted term", func(t *testing.T) {
		a := newTestApp(t, memKV{store.SearchKey: "golang"}, &fakeSearcher{})
		assert.Equal(t, "golang", a.searchInput.Value())
	})
}

func TestInitStartsLoading(t *testing.T) {
	a := newTestApp(t, memKV{}, &fakeSearcher{})

	cmd := a.Init()

	require.NotNil(t, cmd)
	assert.True(t, a.state.IsLoading)
	assert.False(t, a.state.IsError)
	assert.Equal(t, 1, a.seq)
}

func TestInitEmptyTermSkipsRequest(t *testing.T) {
	kv := memKV{}
	term, err := store.NewSemiPersistent(kv, store.SearchKey, "")
	require.NoError(t, err)
	a := NewApp(RunOpts{Searcher: &fakeSearcher{}, Term: term})

	a.Init()

	assert.False(t, a.state.IsLoading)
	assert.Equal(t, 0, a.seq)
}

func TestFetchSuccess(t *testing.T) {
	s := &fakeSearcher{hits: sampleStories()}
	a := newTestApp(t, memKV{}, s)
	a.Init()

	msg := a.fetchCmd(context.Background(), a.seq, "React")()
	a.Update(msg)

	assert.Equal(t, []string{"React"}, s.terms)
	assert.False(t, a.state.IsLoading)
	assert.False(t, a.state.IsError)
	assert.Len(t, a.state.Data, 3)
}

func TestFetchFailure(t *testing.T) {
	s := &fakeSearcher{err: errors.New("offline")}
	a := newTestApp(t, memKV{}, s)
	a.Init()

	msg := a.fetchCmd(context.Background(), a.seq, "React")()
	a.Update(msg)

	assert.False(t, a.state.IsLoading)
	assert.True(t, a.state.IsError)

	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, a.View(), "Something went wrong ...")
}

func TestStaleResultsDropped(t *testing.T) {
	a := newTestApp(t, memKV{}, &fakeSearcher{})
	a.Init()
	first := a.seq

	// Typing issues a newer search before the first resolves
	a.Update(key("x"))
	require.Equal(t, first+1, a.seq)

	a.Update(storiesLoadedMsg{seq: first, stories: sampleStories()})
	assert.True(t, a.state.IsLoading, "stale result must not end loading")
	assert.Empty(t, a.state.Data)

	a.Update(storiesErrMsg{seq: first, err: errors.New("late")})
	assert.False(t, a.state.IsError)

	a.Update(storiesLoadedMsg{seq: a.seq, stories: sampleStories()[:1]})
	assert.False(t, a.state.IsLoading)
	assert.Len(t, a.state.Data, 1)
}

func TestTypingPersistsAndSearches(t *testing.T) {
	kv := memKV{}
	a := newTestApp(t, kv, &fakeSearcher{})
	a.Init()

	a.Update(key("!"))

	assert.Equal(t, "React!", kv[store.SearchKey])
	assert.Equal(t, "React!", a.term.Value())
	assert.Equal(t, 2, a.seq)
	assert.True(t, a.state.IsLoading)
}

func TestClearingTermSkipsRequest(t *testing.T) {
	kv := memKV{store.SearchKey: "a"}
	a := newTestApp(t, kv, &fakeSearcher{})
	a.Init()
	a.Update(storiesLoadedMsg{seq: a.seq, stories: sampleStories()})

	a.Update(key("backspace"))

	assert.Equal(t, "", kv[store.SearchKey])
	assert.Equal(t, 1, a.seq, "empty term must not issue a request")
	assert.False(t, a.state.IsLoading)
	assert.Len(t, a.state.Data, 3)
}

func TestDismissStory(t *testing.T) {
	a := newTestApp(t, memKV{}, &fakeSearcher{})
	a.Init()
	a.Update(storiesLoadedMsg{seq: a.seq, stories: sampleStories()})

	a.Update(key("enter")) // leave the search box
	require.Equal(t, focusList, a.focus)

	a.Update(key("j"))
	a.Update(key("d"))

	require.Len(t, a.state.Data, 2)
	assert.Equal(t, story.ObjectID("0"), a.state.Data[0].ObjectID)
	assert.Equal(t, story.ObjectID("2"), a.state.Data[1].ObjectID)
	assert.Equal(t, 1, a.cursor)

	// Dismissing the last item moves the cursor back
	a.Update(key("d"))
	assert.Len(t, a.state.Data, 1)
	assert.Equal(t, 0, a.cursor)
}

func TestListKeysIgnoredWhileSearching(t *testing.T) {
	kv := memKV{}
	a := newTestApp(t, kv, &fakeSearcher{})
	a.Init()
	a.Update(storiesLoadedMsg{seq: a.seq, stories: sampleStories()})

	a.Update(key("d"))

	assert.Len(t, a.state.Data, 3, "d types into the search box")
	assert.Equal(t, "Reactd", kv[store.SearchKey])
}

func TestFocusToggle(t *testing.T) {
	a := newTestApp(t, memKV{}, &fakeSearcher{})
	assert.Equal(t, focusSearch, a.focus)

	a.Update(key("tab"))
	assert.Equal(t, focusList, a.focus)

	a.Update(key("/"))
	assert.Equal(t, focusSearch, a.focus)

	a.Update(key("esc"))
	assert.Equal(t, focusList, a.focus)
}

func TestViewShowsLoadingAndItems(t *testing.T) {
	a := newTestApp(t, memKV{}, &fakeSearcher{})
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a.Init()

	view := a.View()
	assert.Contains(t, view, "My Hacker Stories")
	assert.Contains(t, view, "Search:")
	assert.Contains(t, view, "Loading ...")

	a.Update(storiesLoadedMsg{seq: a.seq, stories: sampleStories()})
	view = a.View()
	assert.NotContains(t, view, "Loading ...")
	assert.True(t, strings.Contains(view, "Redux"), "expected story titles in view")
	assert.Contains(t, view, "Points: 5")
}

func TestHelpOverlay(t *testing.T) {
	a := newTestApp(t, memKV{}, &fakeSearcher{})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a.Update(key("tab"))

	a.Update(key("?"))
	assert.Contains(t, a.View(), "Keyboard Shortcuts")

	a.Update(key("q"))
	assert.False(t, a.help)
}

// runStoryCmds executes cmd and any batched commands in the background,
// forwarding only search results to out.
func runStoryCmds(cmd tea.Cmd, out chan<- tea.Msg) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				runStoryCmds(c, out)
			}
			return
		}
		switch msg.(type) {
		case storiesLoadedMsg, storiesErrMsg:
			out <- msg
		}
	}()
}

func TestTypingBurstWithRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"hits":[{"title":"Go","objectID":"1"}]}`))
	}))
	defer srv.Close()

	kv := memKV{store.SearchKey: "g"}
	term, err := store.NewSemiPersistent(kv, store.SearchKey, "React")
	require.NoError(t, err)
	a := NewApp(RunOpts{
		Searcher: hn.NewClient(hn.WithEndpoint(srv.URL), hn.WithRateLimit(4)),
		Term:     term,
		// Far shorter than the wait a queue of 30 searches at 4/s would need
		Timeout: time.Second,
	})

	results := make(chan tea.Msg, 64)
	runStoryCmds(a.Init(), results)
	for i := 0; i < 30; i++ {
		_, cmd := a.Update(key("o"))
		runStoryCmds(cmd, results)
	}
	require.Equal(t, 31, a.seq)

	timeout := time.After(5 * time.Second)
	for i := 0; i < a.seq; i++ {
		select {
		case msg := <-results:
			a.Update(msg)
		case <-timeout:
			t.Fatalf("only %d of %d searches finished", i, a.seq)
		}
	}

	assert.False(t, a.state.IsLoading)
	assert.False(t, a.state.IsError, "latest search must not fail while the API is healthy")
	require.Len(t, a.state.Data, 1)
	assert.Less(t, int(requests.Load()), 31, "superseded searches should be cancelled before reaching the API")
}

// blockingSearcher holds every search until its context ends.
type blockingSearcher struct{}

func (blockingSearcher) Search(ctx context.Context, term string) ([]story.Story, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSupersededSearchIsCancelled(t *testing.T) {
	term, err := store.NewSemiPersistent(memKV{}, store.SearchKey, "React")
	require.NoError(t, err)
	a := NewApp(RunOpts{Searcher: blockingSearcher{}, Term: term, Timeout: time.Minute})

	results := make(chan tea.Msg, 4)
	runStoryCmds(a.Init(), results)
	first := a.seq

	a.Update(key("s"))

	select {
	case msg := <-results:
		errMsg, ok := msg.(storiesErrMsg)
		require.True(t, ok, "expected the first search to end, got %T", msg)
		assert.Equal(t, first, errMsg.seq)
		assert.ErrorIs(t, errMsg.err, context.Canceled)
		a.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search was not cancelled")
	}

	assert.True(t, a.state.IsLoading, "the newer search is still pending")
	assert.False(t, a.state.IsError, "a cancelled superseded search is not a failure")
}

func TestClearingTermKeepsInFlightResult(t *testing.T) {
	kv := memKV{store.SearchKey: "a"}
	a := newTestApp(t, kv, &fakeSearcher{})
	a.Init()
	inFlight := a.seq

	a.Update(key("backspace"))

	// No newer search was issued, so the pending one still applies
	a.Update(storiesLoadedMsg{seq: inFlight, stories: sampleStories()})
	assert.False(t, a.state.IsLoading)
	assert.Len(t, a.state.Data, 3)
}
