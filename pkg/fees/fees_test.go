package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentSnapshot() []Snapshot {
	return []Snapshot{
		{
			EffectiveDate: "2024-09-20",
			IsCurrent:     true,
			HomeCare: map[string]FeeValue{
				"level1": {Amount: 11.72, Formatted: "$11.72"},
				"level2": {Amount: 15.00, Formatted: "$15.00"},
				"level3": {Amount: 32.30, Formatted: "$32.30"},
				"level4": {Amount: 48.97, Formatted: "$48.97"},
			},
			Residential: map[string]FeeValue{
				"basicDailyFee": {Amount: 63.57, Formatted: "$63.57"},
			},
			Accommodation: map[string]FeeValue{
				"maxAccommodationSupplement": {Amount: 69.49, Formatted: "$69.49"},
			},
		},
		{
			EffectiveDate: "2024-03-20",
			IsCurrent:     false,
			HomeCare: map[string]FeeValue{
				"level2": {Amount: 14.50, Formatted: "$14.50"},
			},
		},
	}
}

func TestClassifyLevelledHomeCareQuery(t *testing.T) {
	c := Classify("What is the level 2 home care package fee?")

	assert.True(t, c.IsStructured)
	assert.Equal(t, CategoryHomeCare, c.Category)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, IntentCurrent, c.Intent)
	assert.GreaterOrEqual(t, c.Confidence, MinConfidence)
}

func TestClassifyNonFeeQuery(t *testing.T) {
	c := Classify("Who is eligible for a home care package?")

	assert.False(t, c.IsStructured)
	assert.Equal(t, 0.0, c.Confidence)
}

func TestClassifyFeeWithoutCategoryStaysUnstructured(t *testing.T) {
	c := Classify("What does it cost to park at the hospital?")

	assert.False(t, c.IsStructured)
	assert.Less(t, c.Confidence, MinConfidence)
}

func TestClassifyConfidenceCapped(t *testing.T) {
	c := Classify("Compare the current level 3 home care package fee rate for September 2024")

	assert.LessOrEqual(t, c.Confidence, 1.0)
}

func TestRespondLevelTwoHomeCare(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots(currentSnapshot())
	responder := NewResponder(store)

	answer, ok := responder.Respond(Classify("What is the level 2 home care package fee?"))
	require.True(t, ok)
	assert.Contains(t, answer.Text, "$15.00")
	assert.Contains(t, answer.Text, "20 September 2024")
	assert.Contains(t, answer.SourceSection, "20 September 2024")
	assert.Equal(t, "2024-09-20", answer.EffectiveDate)
}

func TestRespondAllHomeCareLevels(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots(currentSnapshot())
	responder := NewResponder(store)

	answer, ok := responder.Respond(Classify("What are the current home care package fees?"))
	require.True(t, ok)
	assert.Contains(t, answer.Text, "Level 1: $11.72")
	assert.Contains(t, answer.Text, "Level 4: $48.97")
}

func TestRespondMissingLevelFallsThrough(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots([]Snapshot{{
		EffectiveDate: "2024-09-20",
		IsCurrent:     true,
		HomeCare:      map[string]FeeValue{"level1": {Formatted: "$11.72"}},
	}})
	responder := NewResponder(store)

	c := Classification{IsStructured: true, Category: CategoryHomeCare, Level: 3, Intent: IntentCurrent}
	_, ok := responder.Respond(c)
	assert.False(t, ok)
}

func TestRespondHistoryWithoutLevelFallsThrough(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots(currentSnapshot())
	responder := NewResponder(store)

	// No level means no single fee to trace; this goes to retrieval.
	_, ok := responder.Respond(Classify("What was the previous home care package fee?"))
	assert.False(t, ok)
}

func TestRespondHistoryListsAllSnapshots(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots(currentSnapshot())
	responder := NewResponder(store)

	answer, ok := responder.Respond(Classify("What was the previous level 2 home care fee?"))
	require.True(t, ok)
	assert.Contains(t, answer.Text, "$15.00 as of 20 September 2024")
	assert.Contains(t, answer.Text, "$14.50 as of 20 March 2024")
	assert.Equal(t, "Historical rates", answer.SourceSection)
}

func TestRespondCompareUsesPrecedingSnapshot(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots(currentSnapshot())
	responder := NewResponder(store)

	answer, ok := responder.Respond(Classify("Compare the level 2 home care fee with before"))
	require.True(t, ok)
	assert.Contains(t, answer.Text, "$15.00 as of 20 September 2024")
	assert.Contains(t, answer.Text, "$14.50 as of 20 March 2024")
}

func TestRespondCompareWithoutEarlierSnapshotFallsThrough(t *testing.T) {
	store := NewScheduleStore()
	store.InitFromSnapshots(currentSnapshot()[:1])
	responder := NewResponder(store)

	c := Classification{IsStructured: true, Category: CategoryHomeCare, Level: 2, Intent: IntentCompare}
	_, ok := responder.Respond(c)
	assert.False(t, ok)
}

func TestRespondWithoutScheduleFallsThrough(t *testing.T) {
	responder := NewResponder(NewScheduleStore())

	_, ok := responder.Respond(Classify("What is the level 2 home care package fee?"))
	assert.False(t, ok)
}

func TestScheduleInitMissingFileIsNotReady(t *testing.T) {
	store := NewScheduleStore()
	require.NoError(t, store.Init("/nonexistent/fees.json"))
	assert.False(t, store.Ready())
}
