package result

import (
	"encoding/json"
	"strconv"
)

// Item is one search result as delivered on the stream.
// Unrecognized fields are preserved verbatim in Raw so newer backend
// result shapes survive a round trip through the client.
type Item struct {
	ID      string
	Title   string
	URL     string
	Snippet string
	Score   float64
	Raw     json.RawMessage
}

// UnmarshalJSON decodes a result item, tolerating numeric ids.
func (it *Item) UnmarshalJSON(data []byte) error {
	var dto struct {
		ID      any     `json:"id"`
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Snippet string  `json:"snippet"`
		Score   float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	it.ID = idString(dto.ID)
	it.Title = dto.Title
	it.URL = dto.URL
	it.Snippet = dto.Snippet
	it.Score = dto.Score
	it.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the original payload when available.
func (it Item) MarshalJSON() ([]byte, error) {
	if len(it.Raw) > 0 {
		return it.Raw, nil
	}
	type alias struct {
		ID      string  `json:"id"`
		Title   string  `json:"title,omitempty"`
		URL     string  `json:"url,omitempty"`
		Snippet string  `json:"snippet,omitempty"`
		Score   float64 `json:"score,omitempty"`
	}
	return json.Marshal(alias{
		ID:      it.ID,
		Title:   it.Title,
		URL:     it.URL,
		Snippet: it.Snippet,
		Score:   it.Score,
	})
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}
