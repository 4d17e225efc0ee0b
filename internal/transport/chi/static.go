package chi

import (
	"context"
	"fmt"

	"github.com/helio-search/helio/internal/domain/search/result"
)

// StaticAnswerer composes a canned answer from the top result. Used when no
// answer provider is configured.
type StaticAnswerer struct{}

// Answer implements Answerer without calling any external service.
func (StaticAnswerer) Answer(_ context.Context, query string, items []result.Item) (string, error) {
	if len(items) == 0 {
		return fmt.Sprintf("No results matched %q.", query), nil
	}
	top := items[0]
	if top.Snippet != "" {
		return fmt.Sprintf("According to %q: %s", top.Title, top.Snippet), nil
	}
	return fmt.Sprintf("The most relevant result is %q.", top.Title), nil
}

var _ Answerer = StaticAnswerer{}
