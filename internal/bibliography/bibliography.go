// Package bibliography collects the sources cited across a whole build and
// renders them as one master page.
package bibliography

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"git.home.luguber.info/inful/annodoc/internal/util/sets"
)

// ErrFrozen is returned when sources are added after the bibliography was finalized.
var ErrFrozen = errors.New("bibliography already finalized")

// DefaultTitle is the heading of the master page.
const DefaultTitle = "Sources"

// Aggregator accumulates the union of cited URLs. It is safe for concurrent use;
// Add is the single merge point for parallel builds.
type Aggregator struct {
	mu     sync.Mutex
	urls   sets.Set[string]
	frozen bool
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{urls: sets.New[string]()}
}

// Add merges urls into the bibliography.
func (a *Aggregator) Add(urls ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	a.urls.AddAll(urls...)
	return nil
}

// Len reports how many distinct URLs were added so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.urls.Len()
}

// Finalize freezes the aggregator and returns the sorted bibliography. Further
// calls return an equal result; further Add calls fail with ErrFrozen.
func (a *Aggregator) Finalize() *Bibliography {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frozen = true
	return &Bibliography{URLs: sets.Sorted(a.urls)}
}

// Bibliography is the finalized, sorted and duplicate-free list of cited URLs.
type Bibliography struct {
	URLs []string
}

// Contains reports whether url is listed.
func (b *Bibliography) Contains(url string) bool {
	_, found := slices.BinarySearch(b.URLs, url)
	return found
}

// Render returns the master page body.
func (b *Bibliography) Render(title string) string {
	if title == "" {
		title = DefaultTitle
	}
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	if len(b.URLs) == 0 {
		sb.WriteString("No sources are cited in the documentation.\n")
		return sb.String()
	}
	sb.WriteString("Every external reference cited in the documentation, in alphabetical order.\n\n")
	for _, u := range b.URLs {
		sb.WriteString("- " + u + "\n")
	}
	return sb.String()
}
