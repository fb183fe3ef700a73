// Package stories holds the in-memory story list and the reducer that
// drives it. The list is never persisted.
package stories

import (
	"errors"
	"fmt"

	"github.com/matheuskafuri/hnstories/internal/story"
)

// ErrUnknownAction is returned by Reduce for actions it does not handle.
var ErrUnknownAction = errors.New("unknown action")

// State is the view state of the story list.
type State struct {
	Data      []story.Story
	IsLoading bool
	IsError   bool
}

// Action is one of FetchInit, FetchFailure, FetchSuccess or RemoveStory.
type Action interface {
	action()
}

type FetchInit struct{}

type FetchFailure struct{}

type FetchSuccess struct {
	Stories []story.Story
}

type RemoveStory struct {
	Story story.Story
}

func (FetchInit) action()    {}
func (FetchFailure) action() {}
func (FetchSuccess) action() {}
func (RemoveStory) action()  {}

// Reduce returns the state that results from applying a to s.
// The slice held by s is never modified.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case FetchInit:
		s.IsLoading = true
		s.IsError = false
		return s, nil
	case FetchFailure:
		s.IsLoading = false
		s.IsError = true
		return s, nil
	case FetchSuccess:
		s.IsLoading = false
		s.IsError = false
		s.Data = a.Stories
		return s, nil
	case RemoveStory:
		s.Data = remove(s.Data, a.Story.ObjectID)
		return s, nil
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}

func remove(list []story.Story, id story.ObjectID) []story.Story {
	out := make([]story.Story, 0, len(list))
	for _, s := range list {
		if s.ObjectID != id {
			out = append(out, s)
		}
	}
	return out
}
