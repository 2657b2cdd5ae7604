package feedback

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
)

func TestIncorrectUsesCuratedContrast(t *testing.T) {
	c := catalog.Compound()
	trial := domain.TrialDescriptor{SubjectID: "AF03", TargetEmotion: "SU", Angle: "S"}

	fb, err := Evaluate(c, "HA", trial, "n.JPG", "e.JPG")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if fb.Correct {
		t.Fatalf("HA against SU must be incorrect")
	}
	want, _ := c.Contrast("HA", "SU")
	if !reflect.DeepEqual(fb.Contrasts, want) {
		t.Fatalf("expected HA->SU contrast %v, got %v", want, fb.Contrasts)
	}
	if fb.SelectedName != "Happiness" || fb.TargetName != "Surprise" {
		t.Fatalf("unexpected names %s / %s", fb.SelectedName, fb.TargetName)
	}
	if len(fb.Comparison) != 2 {
		t.Fatalf("expected comparison pair, got %v", fb.Comparison)
	}
}

func TestIncorrectFallsBackToGenericHints(t *testing.T) {
	c := catalog.Compound()
	fb, err := Evaluate(c, "NE", domain.TrialDescriptor{TargetEmotion: "SA"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !reflect.DeepEqual(fb.Contrasts, c.GenericHints) {
		t.Fatalf("expected generic hints, got %v", fb.Contrasts)
	}
}

func TestCorrectReturnsClues(t *testing.T) {
	c := catalog.Compound()
	fb, err := Evaluate(c, "DI", domain.TrialDescriptor{TargetEmotion: "DI"}, "n.JPG", "e.JPG")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	disgust, _ := c.Emotion("DI")
	if !fb.Correct || !reflect.DeepEqual(fb.Clues, disgust.Clues) {
		t.Fatalf("expected clue list, got %+v", fb)
	}
	if len(fb.Contrasts) != 0 || len(fb.Comparison) != 0 {
		t.Fatalf("correct answers carry no contrast, got %+v", fb)
	}
}

func TestEvaluateRejectsMissingOrUnknown(t *testing.T) {
	c := catalog.Compound()
	if _, err := Evaluate(c, "", domain.TrialDescriptor{TargetEmotion: "HA"}); !errors.Is(err, domain.ErrNoAnswerSelected) {
		t.Fatalf("expected no answer error, got %v", err)
	}
	if _, err := Evaluate(c, "XX", domain.TrialDescriptor{TargetEmotion: "HA"}); !errors.Is(err, domain.ErrUnknownEmotion) {
		t.Fatalf("expected unknown emotion, got %v", err)
	}
}

func TestTallyScoreBound(t *testing.T) {
	var tally Tally
	if tally.Accuracy() != 0 || tally.Snapshot().Score != 0 {
		t.Fatalf("empty tally must report zero")
	}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		tally.Record(rnd.Intn(3) == 0)
		s := tally.Snapshot()
		if s.Score > s.Attempts {
			t.Fatalf("score %d exceeds attempts %d", s.Score, s.Attempts)
		}
		if s.Accuracy < 0 || s.Accuracy > 100 {
			t.Fatalf("accuracy out of range: %d", s.Accuracy)
		}
	}
}

func TestAccuracyRounds(t *testing.T) {
	var tally Tally
	tally.Record(true)
	tally.Record(false)
	tally.Record(false)
	if got := tally.Accuracy(); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	tally.Record(true)
	tally.Record(true)
	tally.Record(true)
	tally.Record(true)
	tally.Record(false)
	// 5/8 = 62.5 rounds half up.
	if got := tally.Accuracy(); got != 63 {
		t.Fatalf("expected 63, got %d", got)
	}
}
