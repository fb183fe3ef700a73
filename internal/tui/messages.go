package tui

import (
	"github.com/matheuskafuri/hnstories/internal/story"
)

// storiesLoadedMsg and storiesErrMsg carry the sequence number of the
// request that produced them so stale results can be dropped.
type storiesLoadedMsg struct {
	seq     int
	stories []story.Story
}

type storiesErrMsg struct {
	seq int
	err error
}

type statusErrMsg struct {
	err error
}
