// Package leaderboard contains the ranking model of the progression engine.
// Ranking is a pure function over a population snapshot: it reads the current
// learner rows, orders them by policy, and assigns competition ranks. Nothing
// here persists a rank column; ranks are recomputed fresh on every call.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank represents a position in the leaderboard, starting at 1.
type Rank int

// IsValid checks that the rank is positive.
func (r Rank) IsValid() bool {
	return r > 0
}

// String returns the display form of the rank.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry represents one row of the leaderboard. It is derived state, computed
// on read from the learner population; nothing in it is persisted.
type Entry struct {
	// Rank - competition rank: tied points share a rank, the next distinct
	// score skips past the tie block (1,1,3,...).
	Rank Rank

	// LearnerID - internal learner identifier.
	LearnerID string

	// Username - unique login name; the deterministic tie-break key.
	Username string

	// DisplayName - name rendered in the UI.
	DisplayName string

	// Points - points at snapshot time.
	Points learner.Points

	// Level - level at snapshot time.
	Level learner.Level

	// UpdatedAt - last progression update of the underlying learner row.
	UpdatedAt time.Time
}

// Clone creates a copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// String returns a string representation for logging.
func (e *Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, Username: %s, Points: %d}", e.Rank, e.Username, e.Points)
}

// ══════════════════════════════════════════════════════════════════════════════
// STANDING
// ══════════════════════════════════════════════════════════════════════════════

// Standing is a single learner's position within a ranking.
type Standing struct {
	Rank   Rank
	Points learner.Points

	// Of - total number of ranked learners.
	Of int
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Ranking is a full ordered list of leaderboard entries.
type Ranking struct {
	entries []*Entry
	byID    map[string]*Entry
}

// NewRanking creates an empty Ranking.
func NewRanking() *Ranking {
	return &Ranking{
		entries: make([]*Entry, 0),
		byID:    make(map[string]*Entry),
	}
}

// FromPopulation builds and sorts a ranking from a learner population
// snapshot. Callers supply the eligibility filtering (active students);
// the ranking orders whatever it is handed.
func FromPopulation(population []*learner.Learner) *Ranking {
	r := NewRanking()
	for _, l := range population {
		_ = r.Add(&Entry{
			LearnerID:   l.ID,
			Username:    l.Username,
			DisplayName: l.DisplayName,
			Points:      l.Points,
			Level:       l.Level,
			UpdatedAt:   l.UpdatedAt,
		})
	}
	r.Sort()
	return r
}

// Add appends an entry without sorting. Duplicate learner IDs are rejected.
func (r *Ranking) Add(entry *Entry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if _, exists := r.byID[entry.LearnerID]; exists {
		return ErrDuplicateLearner
	}

	r.entries = append(r.entries, entry)
	r.byID[entry.LearnerID] = entry
	return nil
}

// Sort orders entries by points descending with username ascending as the
// tie-break, then assigns competition ranks. The secondary key makes tie
// ordering deterministic: equal-points learners always appear in the same
// relative order across repeated calls.
func (r *Ranking) Sort() {
	sort.Slice(r.entries, func(i, j int) bool {
		if r.entries[i].Points != r.entries[j].Points {
			return r.entries[i].Points > r.entries[j].Points
		}
		return r.entries[i].Username < r.entries[j].Username
	})

	// Competition ranking: ties share a rank, the rank after a tie block
	// equals the 1-based position of its first entry.
	for i, entry := range r.entries {
		if i > 0 && entry.Points == r.entries[i-1].Points {
			entry.Rank = r.entries[i-1].Rank
		} else {
			entry.Rank = Rank(i + 1)
		}
	}
}

// GetByID returns the entry for a learner, or nil.
func (r *Ranking) GetByID(learnerID string) *Entry {
	return r.byID[learnerID]
}

// StandingOf returns a learner's standing within this ranking. It is the
// same computation as the full ranking restricted to one row, so the two
// always agree on the same snapshot.
func (r *Ranking) StandingOf(learnerID string) (*Standing, error) {
	entry := r.byID[learnerID]
	if entry == nil {
		return nil, ErrLearnerNotRanked
	}
	return &Standing{Rank: entry.Rank, Points: entry.Points, Of: len(r.entries)}, nil
}

// Top returns the first n entries.
func (r *Ranking) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	result := make([]*Entry, n)
	copy(result, r.entries[:n])
	return result
}

// Slice returns entries [from:to).
func (r *Ranking) Slice(from, to int) []*Entry {
	if from < 0 {
		from = 0
	}
	if to > len(r.entries) {
		to = len(r.entries)
	}
	if from >= to {
		return nil
	}
	result := make([]*Entry, to-from)
	copy(result, r.entries[from:to])
	return result
}

// Count returns the number of entries.
func (r *Ranking) Count() int {
	return len(r.entries)
}

// All returns all entries in rank order.
func (r *Ranking) All() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// AveragePoints returns the mean points across the ranking.
func (r *Ranking) AveragePoints() learner.Points {
	if len(r.entries) == 0 {
		return 0
	}

	var total int
	for _, entry := range r.entries {
		total += int(entry.Points)
	}
	return learner.Points(total / len(r.entries))
}

// MedianPoints returns the median points across the ranking.
func (r *Ranking) MedianPoints() learner.Points {
	if len(r.entries) == 0 {
		return 0
	}

	mid := len(r.entries) / 2
	if len(r.entries)%2 == 0 {
		return learner.Points((int(r.entries[mid-1].Points) + int(r.entries[mid].Points)) / 2)
	}
	return r.entries[mid].Points
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNilEntry - attempt to add a nil entry.
	ErrNilEntry = errors.New("cannot add nil entry")

	// ErrDuplicateLearner - learner already present in the ranking.
	ErrDuplicateLearner = errors.New("learner already exists in ranking")

	// ErrLearnerNotRanked - learner absent from the ranked population.
	ErrLearnerNotRanked = errors.New("learner is not in the ranked population")

	// ErrEmptyLeaderboard - the ranked population is empty.
	ErrEmptyLeaderboard = errors.New("leaderboard is empty")
)
