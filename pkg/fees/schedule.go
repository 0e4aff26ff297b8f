// Package fees answers a narrow class of fee-lookup questions from a small
// structured dataset, bypassing retrieval entirely. A lookup miss always
// falls through to the general pipeline; this package never guesses.
package fees

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

// FeeValue is one published rate.
type FeeValue struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

// Snapshot is one dated version of the published schedule.
type Snapshot struct {
	EffectiveDate string              `json:"effectiveDate"`
	IsCurrent     bool                `json:"isCurrent"`
	HomeCare      map[string]FeeValue `json:"homeCare"`
	Residential   map[string]FeeValue `json:"residential"`
	Accommodation map[string]FeeValue `json:"accommodation"`
}

// EffectiveDateDisplay renders the snapshot date as Australians write it,
// e.g. "20 September 2024". The raw value is returned when it does not parse.
func (s *Snapshot) EffectiveDateDisplay() string {
	t, err := time.Parse("2006-01-02", s.EffectiveDate)
	if err != nil {
		return s.EffectiveDate
	}
	return t.Format("2 January 2006")
}

// ScheduleStore holds the fee snapshots, immutable after Init. Absence of
// the schedule file leaves the store not ready, which disables structured
// answers without affecting the rest of the pipeline.
type ScheduleStore struct {
	snapshots []Snapshot
	current   *Snapshot
	ready     bool
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{}
}

// Init loads the schedule from a local path or an http(s) URL. A missing
// file is not an error; the store simply reports not ready.
func (s *ScheduleStore) Init(path string) error {
	var raw []byte
	var err error
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		raw, err = fetchSchedule(path)
		if err != nil {
			return fmt.Errorf("fetch fee schedule: %w", err)
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("read fee schedule: %w", err)
		}
	}

	var payload struct {
		Snapshots []Snapshot `json:"snapshots"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse fee schedule: %w", err)
	}

	s.snapshots = payload.Snapshots
	for i := range s.snapshots {
		if s.snapshots[i].IsCurrent {
			s.current = &s.snapshots[i]
			break
		}
	}
	s.ready = s.current != nil
	return nil
}

// InitFromSnapshots seeds the store directly, used by tests and tools.
func (s *ScheduleStore) InitFromSnapshots(snapshots []Snapshot) {
	s.snapshots = snapshots
	s.current = nil
	for i := range s.snapshots {
		if s.snapshots[i].IsCurrent {
			s.current = &s.snapshots[i]
			break
		}
	}
	s.ready = s.current != nil
}

func (s *ScheduleStore) Ready() bool {
	return s.ready
}

// Current returns the snapshot flagged as current.
func (s *ScheduleStore) Current() (*Snapshot, bool) {
	if !s.ready {
		return nil, false
	}
	return s.current, true
}

// History returns every loaded snapshot, newest flag state untouched.
func (s *ScheduleStore) History() []Snapshot {
	return s.snapshots
}

// ByDateDesc returns a copy of the snapshots ordered newest first.
// Effective dates are ISO 8601, so string order is date order.
func (s *ScheduleStore) ByDateDesc() []Snapshot {
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	sort.Slice(out, func(i, j int) bool {
		return out[i].EffectiveDate > out[j].EffectiveDate
	})
	return out
}

func fetchSchedule(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
