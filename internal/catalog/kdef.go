// Package catalog holds the built-in stimulus catalogs for the KDEF face set.
//
// The three variants differ only in angle taxonomy: kdef and kdef-v3 model the
// mirror side as a separate L/R axis, kdef-compound folds it into the angle code.
package catalog

import (
	"fmt"

	"emotion-quiz-service/internal/domain"
)

const (
	// IDPositional uses angles F/H/S plus an L/R axis; its medium tier is pinned to R.
	IDPositional = "kdef"
	// IDPositionalV3 uses angles F/H/S plus an L/R axis; medium pins R as in kdef.
	IDPositionalV3 = "kdef-v3"
	// IDCompound uses compound angles S/HL/HR/FL/FR.
	IDCompound = "kdef-compound"

	// DefaultID is the catalog a session opens with when none is requested.
	DefaultID = IDCompound

	// DefaultSubject is shown before the first trial.
	DefaultSubject = "AF03"
)

// Builtins returns every built-in catalog keyed by id.
func Builtins() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		IDPositional:   Positional(),
		IDPositionalV3: PositionalV3(),
		IDCompound:     Compound(),
	}
}

// Positional is the first KDEF layout: KDEF/<subj>/<subj><emo><angle><pos>.JPG.
func Positional() domain.Catalog {
	return domain.Catalog{
		ID:       IDPositional,
		Neutral:  "NE",
		Emotions: emotions(),
		Tiers: []domain.TierSpec{
			{Name: domain.TierEasy, Allowed: []domain.AngleCode{"F"}, Description: "Front"},
			{Name: domain.TierMedium, Allowed: []domain.AngleCode{"F", "H"}, Description: "Front + half profile", PinnedPosition: domain.PositionRight},
			{Name: domain.TierHard, Allowed: []domain.AngleCode{"F", "H", "S"}, Description: "All angles"},
		},
		Subjects:  subjects(),
		Positions: []domain.Position{domain.PositionLeft, domain.PositionRight},
		AngleDescriptions: map[domain.AngleCode]string{
			"F": "Front",
			"H": "Half profile (45°)",
			"S": "Full profile (90°)",
		},
		Contrasts:    contrasts(),
		GenericHints: genericHints(),
		Assets:       domain.AssetLayout{BaseURL: "KDEF", Extension: ".JPG"},
	}
}

// PositionalV3 keeps the positional layout with fuller tier and angle descriptions.
func PositionalV3() domain.Catalog {
	c := Positional()
	c.ID = IDPositionalV3
	c.Tiers = []domain.TierSpec{
		{Name: domain.TierEasy, Allowed: []domain.AngleCode{"F"}, Description: "Front", FullDescription: "Front angle"},
		{Name: domain.TierMedium, Allowed: []domain.AngleCode{"F", "H"}, Description: "Front + half profile", FullDescription: "Front (F) or half profile 45° (H), right side", PinnedPosition: domain.PositionRight},
		{Name: domain.TierHard, Allowed: []domain.AngleCode{"F", "H", "S"}, Description: "All angles", FullDescription: "Front (F), half profile 45° (H) or full profile 90° (S)"},
	}
	c.AngleDescriptions = map[domain.AngleCode]string{
		"F": "Front",
		"H": "Half profile 45°",
		"S": "Full profile 90°",
	}
	return c
}

// Compound folds the side into the angle code: <subj><emo><angle>.JPG with angle in S, HL, HR, FL, FR.
func Compound() domain.Catalog {
	return domain.Catalog{
		ID:       IDCompound,
		Neutral:  "NE",
		Emotions: emotions(),
		Tiers: []domain.TierSpec{
			{Name: domain.TierEasy, Allowed: []domain.AngleCode{"S"}, Description: "Front only", FullDescription: "Front (S)"},
			{Name: domain.TierMedium, Allowed: []domain.AngleCode{"S", "HL", "HR"}, Description: "Front + half profiles", FullDescription: "Front (S), left (HL) and right (HR) half profile"},
			{Name: domain.TierHard, Allowed: []domain.AngleCode{"S", "HL", "HR", "FL", "FR"}, Description: "All angles", FullDescription: "Front (S), half profile (HL/HR) and full profile (FL/FR)"},
		},
		Subjects: subjects(),
		Mirrors: map[domain.AngleCode]domain.AngleCode{
			"HL": "HR",
			"HR": "HL",
			"FL": "FR",
			"FR": "FL",
		},
		AngleDescriptions: map[domain.AngleCode]string{
			"S":  "Front",
			"HL": "Left half profile",
			"HR": "Right half profile",
			"FL": "Left full profile",
			"FR": "Right full profile",
		},
		Contrasts:    contrasts(),
		GenericHints: genericHints(),
		Assets:       domain.AssetLayout{BaseURL: "https://ik.imagekit.io/xpsde56xg/KDEF", Extension: ".JPG"},
	}
}

func subjects() domain.SubjectSpace {
	ids := make([]string, 0, 35)
	for i := 1; i <= 35; i++ {
		ids = append(ids, fmt.Sprintf("%02d", i))
	}
	return domain.SubjectSpace{
		Phases:  []string{"A", "B"},
		Genders: []string{"F", "M"},
		IDs:     ids,
	}
}

func emotions() []domain.Emotion {
	return []domain.Emotion{
		{Code: "AF", Name: "Fear", Emoji: "😨", Clues: []string{
			"Raised eyebrows",
			"Eyes wide open",
			"Mouth stretched back",
		}},
		{Code: "AN", Name: "Anger", Emoji: "😠", Clues: []string{
			"Lowered, drawn-together eyebrows",
			"Piercing stare",
			"Pressed lips",
		}},
		{Code: "DI", Name: "Disgust", Emoji: "🤢", Clues: []string{
			"Wrinkled nose",
			"Raised upper lip",
			"Raised cheeks",
		}},
		{Code: "HA", Name: "Happiness", Emoji: "😊", Clues: []string{
			"Lip corners pulled up",
			"Wrinkles around the eyes",
			"Raised cheeks",
		}},
		{Code: "SA", Name: "Sadness", Emoji: "😢", Clues: []string{
			"Lip corners pulled down",
			"Triangle-shaped eyebrows",
			"Drooping upper eyelid",
		}},
		{Code: "SU", Name: "Surprise", Emoji: "😲", Clues: []string{
			"Eyebrows raised high",
			"Eyes wide open",
			"Dropped jaw",
		}},
		{Code: "NE", Name: "Neutral", Emoji: "😐", Clues: []string{
			"Relaxed facial muscles",
			"No particular expression",
			"Straight mouth line",
		}},
	}
}

func contrasts() []domain.Contrast {
	return []domain.Contrast{
		{Selected: "HA", Correct: "SU", Hints: []string{
			"Surprise raises the eyebrows higher than happiness",
			"In surprise the jaw usually drops, in happiness it does not",
		}},
		{Selected: "SU", Correct: "HA", Hints: []string{
			"Happiness wrinkles the skin around the eyes, surprise does not",
			"In happiness the cheeks rise, in surprise they do not",
		}},
		{Selected: "AN", Correct: "DI", Hints: []string{
			"Anger draws the eyebrows down and together, disgust wrinkles the nose",
			"In disgust the upper lip rises",
		}},
		{Selected: "DI", Correct: "AN", Hints: []string{
			"Anger has a piercing stare, disgust looks like rejection",
			"In anger the lips press together, in disgust they rise",
		}},
		{Selected: "AF", Correct: "SU", Hints: []string{
			"Fear raises the eyebrows straight, surprise curves them",
			"In fear the mouth stretches back, in surprise it drops",
		}},
		{Selected: "SU", Correct: "AF", Hints: []string{
			"Fear keeps tension in the lips, surprise relaxes them",
			"In fear the eyes are wide open but tense",
		}},
		{Selected: "SA", Correct: "NE", Hints: []string{
			"Sadness pulls the lip corners down, neutral keeps the line straight",
			"In sadness the eyebrows form a triangle",
		}},
	}
}

func genericHints() []string {
	return []string{
		"Watch the eyebrows: the two expressions have different patterns",
		"Look at the mouth: lip tension and position are key",
	}
}
