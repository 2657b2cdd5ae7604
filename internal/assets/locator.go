// Package assets maps stimulus descriptors to image identifiers and decides the
// single fallback offered when the renderer cannot load one.
package assets

import (
	"strings"

	"emotion-quiz-service/internal/domain"
)

// Locator composes asset identifiers from a catalog's layout:
// <base>/<subject>/<subject><emotion><angle>[<position>]<ext>.
type Locator struct {
	catalog domain.Catalog
	baseURL string
}

// NewLocator uses the catalog's own base URL unless baseURL overrides it.
func NewLocator(catalog domain.Catalog, baseURL string) *Locator {
	if baseURL == "" {
		baseURL = catalog.Assets.BaseURL
	}
	return &Locator{catalog: catalog, baseURL: strings.TrimRight(baseURL, "/")}
}

// Locate is a pure function of its inputs.
func (l *Locator) Locate(subject string, emotion domain.EmotionCode, angle domain.AngleCode, position domain.Position) domain.AssetID {
	var b strings.Builder
	if l.baseURL != "" {
		b.WriteString(l.baseURL)
		b.WriteByte('/')
	}
	b.WriteString(subject)
	b.WriteByte('/')
	b.WriteString(subject)
	b.WriteString(string(emotion))
	b.WriteString(string(angle))
	b.WriteString(string(position))
	b.WriteString(l.catalog.Assets.Extension)
	return domain.AssetID(b.String())
}

// Pair resolves the neutral and target assets of a trial. Both share subject, angle
// and position; only the emotion code differs.
func (l *Locator) Pair(desc domain.TrialDescriptor) (neutral, expression domain.AssetID) {
	neutral = l.Locate(desc.SubjectID, l.catalog.Neutral, desc.Angle, desc.Position)
	expression = l.Locate(desc.SubjectID, desc.TargetEmotion, desc.Angle, desc.Position)
	return neutral, expression
}

// Fallback returns the one alternative identifier for emotion under desc.
// With a separate position axis it flips the side; with compound angles it uses the
// mirror angle, and angles without a mirror have no fallback.
func (l *Locator) Fallback(desc domain.TrialDescriptor, emotion domain.EmotionCode) (domain.AssetID, bool) {
	if l.catalog.PositionModeled() {
		return l.Locate(desc.SubjectID, emotion, desc.Angle, desc.Position.Opposite()), true
	}
	mirror, ok := l.catalog.Mirror(desc.Angle)
	if !ok {
		return "", false
	}
	return l.Locate(desc.SubjectID, emotion, mirror, ""), true
}
