package lexibase

import (
	"errors"
	"fmt"

	"github.com/lexibase/lexibase/cache"
	"github.com/lexibase/lexibase/search"
)

var (
	// ErrNotFound is returned when an entry could not be materialized from
	// the backing store (missing or corrupt). It is not retried.
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidSearch is returned when a search token matches no recognized
	// command and no word recognizer accepts it. The whole search is
	// rejected; nothing partially compiles.
	ErrInvalidSearch = errors.New("invalid search")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var le *cache.LoadError
	if errors.As(err, &le) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var ie *search.InvalidError
	if errors.As(err, &ie) {
		return fmt.Errorf("%w: %w", ErrInvalidSearch, err)
	}

	return err
}
