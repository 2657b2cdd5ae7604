// Package feedback scores answers and picks the explanation shown to the user.
package feedback

import (
	"fmt"
	"math"

	"emotion-quiz-service/internal/domain"
)

// Tally counts answers for one session. The zero value is ready to use.
type Tally struct {
	score    int
	attempts int
}

// Record counts one attempt and, if correct, one point.
func (t *Tally) Record(correct bool) {
	t.attempts++
	if correct {
		t.score++
	}
}

// Accuracy is round(100*score/attempts), or 0 before the first attempt.
func (t Tally) Accuracy() int {
	if t.attempts == 0 {
		return 0
	}
	return int(math.Round(100 * float64(t.score) / float64(t.attempts)))
}

// Snapshot exports the tally.
func (t Tally) Snapshot() domain.Tally {
	return domain.Tally{Score: t.score, Attempts: t.attempts, Accuracy: t.Accuracy()}
}

// Evaluate compares selected against the trial's target. comparison is attached to
// incorrect answers so the renderer can show the neutral/expression pair.
func Evaluate(catalog domain.Catalog, selected domain.EmotionCode, trial domain.TrialDescriptor, comparison ...domain.AssetID) (domain.Feedback, error) {
	if selected == "" {
		return domain.Feedback{}, domain.ErrNoAnswerSelected
	}
	chosen, ok := catalog.Emotion(selected)
	if !ok {
		return domain.Feedback{}, fmt.Errorf("%w: %q", domain.ErrUnknownEmotion, selected)
	}
	target, ok := catalog.Emotion(trial.TargetEmotion)
	if !ok {
		return domain.Feedback{}, fmt.Errorf("%w: %q", domain.ErrUnknownEmotion, trial.TargetEmotion)
	}

	fb := domain.Feedback{
		Correct:      selected == trial.TargetEmotion,
		Selected:     selected,
		SelectedName: chosen.Name,
		Target:       target.Code,
		TargetName:   target.Name,
		Clues:        append([]string(nil), target.Clues...),
	}
	if fb.Correct {
		return fb, nil
	}

	if hints, ok := catalog.Contrast(selected, trial.TargetEmotion); ok {
		fb.Contrasts = append([]string(nil), hints...)
	} else {
		fb.Contrasts = append([]string(nil), catalog.GenericHints...)
	}
	if len(comparison) > 0 {
		fb.Comparison = append([]domain.AssetID(nil), comparison...)
	}
	return fb, nil
}
