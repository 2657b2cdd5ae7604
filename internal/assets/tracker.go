package assets

import "emotion-quiz-service/internal/domain"

// Slot names which image of a trial an asset fills.
type Slot string

const (
	SlotNeutral    Slot = "neutral"
	SlotExpression Slot = "expression"
)

// LoadOutcome tells the renderer what to do after a failed load.
type LoadOutcome struct {
	Slot   Slot           `json:"slot"`
	Failed domain.AssetID `json:"failed"`
	// Retry is set when a fallback should be tried.
	Retry domain.AssetID `json:"retry,omitempty"`
	// Broken is set when no further attempt will be made for the slot.
	Broken bool `json:"broken"`
}

type slotState struct {
	emotion domain.EmotionCode
	current domain.AssetID
	retried bool
	broken  bool
}

// Tracker applies the single-retry policy for one trial.
type Tracker struct {
	locator *Locator
	desc    domain.TrialDescriptor
	slots   map[Slot]*slotState
}

// NewTracker resolves the trial's pair and starts with no failures.
func NewTracker(locator *Locator, desc domain.TrialDescriptor, neutral domain.EmotionCode) *Tracker {
	n, e := locator.Pair(desc)
	return &Tracker{
		locator: locator,
		desc:    desc,
		slots: map[Slot]*slotState{
			SlotNeutral:    {emotion: neutral, current: n},
			SlotExpression: {emotion: desc.TargetEmotion, current: e},
		},
	}
}

// Current returns the identifier the renderer should be showing for slot.
func (t *Tracker) Current(slot Slot) domain.AssetID {
	return t.slots[slot].current
}

// ReportFailure records that id could not be loaded. The first failure of a slot
// yields at most one fallback; any later failure marks the slot broken.
func (t *Tracker) ReportFailure(id domain.AssetID) (LoadOutcome, error) {
	for _, slot := range []Slot{SlotNeutral, SlotExpression} {
		st := t.slots[slot]
		if st.current != id {
			continue
		}
		out := LoadOutcome{Slot: slot, Failed: id}
		if st.broken {
			out.Broken = true
			return out, nil
		}
		if !st.retried {
			st.retried = true
			if fallback, ok := t.locator.Fallback(t.desc, st.emotion); ok {
				st.current = fallback
				out.Retry = fallback
				return out, nil
			}
		}
		st.broken = true
		out.Broken = true
		return out, nil
	}
	return LoadOutcome{}, domain.ErrUnknownAsset
}
