package fees

import (
	"fmt"
	"sort"
	"strings"
)

// Answer is a structured response produced without retrieval or generation.
type Answer struct {
	Text          string
	SourceTitle   string
	SourceSection string
	EffectiveDate string
}

// Responder turns a confident classification into a direct answer from the
// schedule. Any lookup miss returns ok=false so the caller falls through to
// retrieval; a partial or guessed number is never produced.
type Responder struct {
	store *ScheduleStore
}

func NewResponder(store *ScheduleStore) *Responder {
	return &Responder{store: store}
}

func (r *Responder) Respond(c Classification) (*Answer, bool) {
	if !c.IsStructured {
		return nil, false
	}

	switch c.Intent {
	case IntentCurrent:
		return r.currentAnswer(c)
	case IntentHistory:
		return r.historyAnswer(c)
	case IntentCompare:
		return r.compareAnswer(c)
	default:
		return nil, false
	}
}

func (r *Responder) currentAnswer(c Classification) (*Answer, bool) {
	snapshot, ok := r.store.Current()
	if !ok {
		return nil, false
	}

	var text string
	switch c.Category {
	case CategoryHomeCare:
		text, ok = homeCareAnswer(snapshot, c.Level)
	case CategoryResidential:
		text, ok = singleValueAnswer(snapshot.Residential, "basicDailyFee",
			"The residential aged care maximum basic daily fee is %s.")
	case CategoryAccommodation:
		text, ok = singleValueAnswer(snapshot.Accommodation, "maxAccommodationSupplement",
			"The maximum accommodation supplement is %s per day.")
	default:
		return nil, false
	}
	if !ok {
		return nil, false
	}

	date := snapshot.EffectiveDateDisplay()
	return &Answer{
		Text:          fmt.Sprintf("%s This is the current official rate as of %s.", text, date),
		SourceTitle:   "Schedule of Fees and Charges",
		SourceSection: fmt.Sprintf("Effective %s", date),
		EffectiveDate: snapshot.EffectiveDate,
	}, true
}

// historyAnswer lists the fee across every loaded snapshot, newest first.
func (r *Responder) historyAnswer(c Classification) (*Answer, bool) {
	snapshots := r.store.ByDateDesc()
	if len(snapshots) < 1 {
		return nil, false
	}

	label, ok := feeLabel(c)
	if !ok {
		return nil, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %s over the published schedules:", label)
	listed := 0
	for i := range snapshots {
		value, ok := feeValue(&snapshots[i], c)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, " %s as of %s.", value, snapshots[i].EffectiveDateDisplay())
		listed++
	}
	if listed == 0 {
		return nil, false
	}

	current, _ := r.store.Current()
	return &Answer{
		Text:          b.String(),
		SourceTitle:   "Schedule of Fees and Charges",
		SourceSection: "Historical rates",
		EffectiveDate: currentEffectiveDate(current),
	}, true
}

// compareAnswer contrasts the current rate with the immediately preceding
// snapshot that publishes the same fee.
func (r *Responder) compareAnswer(c Classification) (*Answer, bool) {
	current, ok := r.store.Current()
	if !ok {
		return nil, false
	}
	currentValue, ok := feeValue(current, c)
	if !ok {
		return nil, false
	}
	label, ok := feeLabel(c)
	if !ok {
		return nil, false
	}

	for _, s := range r.store.ByDateDesc() {
		if s.EffectiveDate >= current.EffectiveDate {
			continue
		}
		previousValue, ok := feeValue(&s, c)
		if !ok {
			continue
		}
		text := fmt.Sprintf("The %s is %s as of %s, compared with %s as of %s.",
			label, currentValue, current.EffectiveDateDisplay(),
			previousValue, s.EffectiveDateDisplay())
		return &Answer{
			Text:          text,
			SourceTitle:   "Schedule of Fees and Charges",
			SourceSection: "Rate comparison",
			EffectiveDate: current.EffectiveDate,
		}, true
	}
	return nil, false
}

// feeValue resolves the single formatted value a classification points at.
// Home care needs a level to be a single value.
func feeValue(s *Snapshot, c Classification) (string, bool) {
	var value FeeValue
	var ok bool
	switch c.Category {
	case CategoryHomeCare:
		if c.Level < 1 {
			return "", false
		}
		value, ok = s.HomeCare[fmt.Sprintf("level%d", c.Level)]
	case CategoryResidential:
		value, ok = s.Residential["basicDailyFee"]
	case CategoryAccommodation:
		value, ok = s.Accommodation["maxAccommodationSupplement"]
	default:
		return "", false
	}
	if !ok || value.Formatted == "" {
		return "", false
	}
	return value.Formatted, true
}

func feeLabel(c Classification) (string, bool) {
	switch c.Category {
	case CategoryHomeCare:
		if c.Level < 1 {
			return "", false
		}
		return fmt.Sprintf("Level %d Home Care Package fee", c.Level), true
	case CategoryResidential:
		return "residential aged care maximum basic daily fee", true
	case CategoryAccommodation:
		return "maximum accommodation supplement", true
	default:
		return "", false
	}
}

func currentEffectiveDate(current *Snapshot) string {
	if current == nil {
		return ""
	}
	return current.EffectiveDate
}

func homeCareAnswer(snapshot *Snapshot, level int) (string, bool) {
	if level > 0 {
		value, ok := snapshot.HomeCare[fmt.Sprintf("level%d", level)]
		if !ok || value.Formatted == "" {
			return "", false
		}
		return fmt.Sprintf("The Level %d Home Care Package fee is %s per day.", level, value.Formatted), true
	}

	// No level asked: list every published level, a known small set.
	if len(snapshot.HomeCare) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(snapshot.HomeCare))
	for k := range snapshot.HomeCare {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Current Home Care Package fees per day:")
	for _, k := range keys {
		value := snapshot.HomeCare[k]
		if value.Formatted == "" {
			return "", false
		}
		fmt.Fprintf(&b, " %s: %s.", labelForKey(k), value.Formatted)
	}
	return b.String(), true
}

func singleValueAnswer(values map[string]FeeValue, key string, format string) (string, bool) {
	value, ok := values[key]
	if !ok || value.Formatted == "" {
		return "", false
	}
	return fmt.Sprintf(format, value.Formatted), true
}

func labelForKey(key string) string {
	if strings.HasPrefix(key, "level") {
		return "Level " + strings.TrimPrefix(key, "level")
	}
	return key
}
