package story

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Story is a single search hit.
type Story struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Author      string   `json:"author"`
	NumComments int      `json:"num_comments"`
	Points      int      `json:"points"`
	ObjectID    ObjectID `json:"objectID"`
	CreatedAtI  int64    `json:"created_at_i,omitempty"`
}

// Created returns the creation time, or the zero time when the API omitted it.
func (s Story) Created() time.Time {
	if s.CreatedAtI == 0 {
		return time.Time{}
	}
	return time.Unix(s.CreatedAtI, 0)
}

// ObjectID identifies a story. The search API sends strings, but numeric
// IDs show up in hand-written fixtures and are normalized to their decimal form.
type ObjectID string

func (id *ObjectID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ObjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("objectID: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("objectID %s: not an integer", n)
	}
	*id = ObjectID(n.String())
	return nil
}
