// Package ledger keeps the process-wide, volatile store of per-postal-code
// ratings and reviews. It is rebuilt empty on every process start; there is
// no persistence by design.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ErrInvalidRating marks a rating outside [1,5]. Ledger state is unchanged
// when it is returned.
var ErrInvalidRating = eris.New("ledger: rating must be between 1 and 5")

// Submission acknowledges one accepted rating.
type Submission struct {
	ID     uuid.UUID `json:"id"`
	PLZ    int       `json:"plz"`
	Rating int       `json:"rating"`
	Review string    `json:"review"`
	At     time.Time `json:"at"`
}

// Summary is the accumulated view for one postal code. Reviews carry stable
// 1-based positional numbering in submission order. Count 0 means no
// ratings yet, which is not an error.
type Summary struct {
	PLZ     int      `json:"plz"`
	Count   int      `json:"count"`
	Mean    float64  `json:"mean"`
	Reviews []string `json:"reviews"`
}

// entry holds one postal code's index-aligned rating and review sequences.
// Both grow monotonically; there is no deletion.
type entry struct {
	ratings []int
	reviews []string
}

// Ledger is safe for concurrent use. A single mutex guards every
// read-modify-append sequence so the parallel sequences stay index-aligned.
type Ledger struct {
	mu      sync.Mutex
	entries map[int]*entry
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[int]*entry)}
}

// Submit appends a rating and review for a postal code, creating its entry
// on first submission. Duplicate or low-quality submissions are accepted
// as-is; the only rejection is a rating outside [1,5].
func (l *Ledger) Submit(plz, rating int, review string) (Submission, error) {
	if rating < 1 || rating > 5 {
		return Submission{}, eris.Wrapf(ErrInvalidRating, "got %d", rating)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[plz]
	if !ok {
		e = &entry{}
		l.entries[plz] = e
	}
	e.ratings = append(e.ratings, rating)
	e.reviews = append(e.reviews, review)

	return Submission{
		ID:     uuid.New(),
		PLZ:    plz,
		Rating: rating,
		Review: review,
		At:     time.Now().UTC(),
	}, nil
}

// Summary returns the arithmetic mean over the postal code's entire rating
// history and the numbered review sequence. An unseen postal code yields a
// zero-count summary.
func (l *Ledger) Summary(plz int) Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{PLZ: plz}
	e, ok := l.entries[plz]
	if !ok {
		return s
	}

	var total int
	for _, r := range e.ratings {
		total += r
	}
	s.Count = len(e.ratings)
	s.Mean = float64(total) / float64(len(e.ratings))
	s.Reviews = make([]string, len(e.reviews))
	for i, review := range e.reviews {
		s.Reviews[i] = fmt.Sprintf("%d. %s", i+1, review)
	}
	return s
}
