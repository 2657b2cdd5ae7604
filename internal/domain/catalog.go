package domain

import (
	"fmt"
	"strings"
)

// Emotion returns the entry for code.
func (c Catalog) Emotion(code EmotionCode) (Emotion, bool) {
	for _, e := range c.Emotions {
		if e.Code == code {
			return e, true
		}
	}
	return Emotion{}, false
}

// Quizzable lists the emotion codes a trial may target, in catalog order.
func (c Catalog) Quizzable() []EmotionCode {
	codes := make([]EmotionCode, 0, len(c.Emotions))
	for _, e := range c.Emotions {
		if e.Code != c.Neutral {
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// Tier looks up a tier by name.
func (c Catalog) Tier(name Tier) (TierSpec, bool) {
	for _, t := range c.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return TierSpec{}, false
}

// PositionModeled reports whether the mirror side is an axis of its own.
func (c Catalog) PositionModeled() bool {
	return len(c.Positions) > 0
}

// Mirror returns the mirrored counterpart of a compound angle code.
func (c Catalog) Mirror(angle AngleCode) (AngleCode, bool) {
	m, ok := c.Mirrors[angle]
	if !ok || m == angle {
		return "", false
	}
	return m, true
}

// AngleDescription falls back to the raw code.
func (c Catalog) AngleDescription(angle AngleCode) string {
	if d, ok := c.AngleDescriptions[angle]; ok {
		return d
	}
	return string(angle)
}

// Contrast returns the authored hints for answering selected when correct was shown.
// Pairs are directional: (A,B) and (B,A) are separate entries.
func (c Catalog) Contrast(selected, correct EmotionCode) ([]string, bool) {
	for _, ct := range c.Contrasts {
		if ct.Selected == selected && ct.Correct == correct {
			return ct.Hints, true
		}
	}
	return nil, false
}

// SubjectsInPhase enumerates every subject identifier for phase, female first.
func (c Catalog) SubjectsInPhase(phase string) []string {
	out := make([]string, 0, len(c.Subjects.Genders)*len(c.Subjects.IDs))
	for _, g := range c.Subjects.Genders {
		for _, id := range c.Subjects.IDs {
			out = append(out, phase+g+id)
		}
	}
	return out
}

// ParseSubject splits an identifier such as "AF03" into its axes and checks each
// against the subject space.
func (c Catalog) ParseSubject(subject string) (phase, gender, id string, err error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", "", "", fmt.Errorf("%w: empty subject", ErrInvalidSubject)
	}
	for _, p := range c.Subjects.Phases {
		if !strings.HasPrefix(subject, p) {
			continue
		}
		rest := subject[len(p):]
		for _, g := range c.Subjects.Genders {
			if !strings.HasPrefix(rest, g) {
				continue
			}
			num := rest[len(g):]
			for _, candidate := range c.Subjects.IDs {
				if candidate == num {
					return p, g, num, nil
				}
			}
		}
	}
	return "", "", "", fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
}

// Validate checks the invariants the selector and scorer rely on.
func (c Catalog) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCatalog)
	}
	if _, ok := c.Emotion(c.Neutral); !ok {
		return fmt.Errorf("%w: neutral code %q not in emotion table", ErrInvalidCatalog, c.Neutral)
	}
	if len(c.Quizzable()) == 0 {
		return fmt.Errorf("%w: no quizzable emotions", ErrInvalidCatalog)
	}
	if len(c.Tiers) != 3 {
		return fmt.Errorf("%w: expected 3 tiers, got %d", ErrInvalidCatalog, len(c.Tiers))
	}
	for _, t := range c.Tiers {
		if len(t.Allowed) == 0 {
			return fmt.Errorf("%w: tier %q allows no angles", ErrInvalidCatalog, t.Name)
		}
		if t.PinnedPosition != "" && !c.hasPosition(t.PinnedPosition) {
			return fmt.Errorf("%w: tier %q pins unknown position %q", ErrInvalidCatalog, t.Name, t.PinnedPosition)
		}
	}
	if len(c.Subjects.Phases) == 0 || len(c.Subjects.Genders) == 0 || len(c.Subjects.IDs) == 0 {
		return fmt.Errorf("%w: empty subject space", ErrInvalidCatalog)
	}
	if len(c.GenericHints) == 0 {
		return fmt.Errorf("%w: no generic hints", ErrInvalidCatalog)
	}
	return nil
}

func (c Catalog) hasPosition(p Position) bool {
	for _, candidate := range c.Positions {
		if candidate == p {
			return true
		}
	}
	return false
}
