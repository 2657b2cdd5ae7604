package selector

import (
	"fmt"
	"math/rand"
	"time"

	"emotion-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// Selector draws trial descriptors from a catalog.
// It is not safe for concurrent use; the owning session serializes calls.
type Selector struct {
	catalog domain.Catalog
	rnd     *rand.Rand
	newID   func() string
}

// New builds a selector seeded from the wall clock.
func New(catalog domain.Catalog) *Selector {
	return NewWithRand(catalog, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand allows deterministic draws in tests and replays.
func NewWithRand(catalog domain.Catalog, rnd *rand.Rand) *Selector {
	return &Selector{
		catalog: catalog,
		rnd:     rnd,
		newID:   uuid.NewString,
	}
}

// Select produces a descriptor for tier. In random mode the subject is drawn from the
// full subject space; otherwise manualSubject is validated and used.
func (s *Selector) Select(tier domain.Tier, randomMode bool, manualSubject string) (domain.TrialDescriptor, error) {
	spec, ok := s.catalog.Tier(tier)
	if !ok {
		return domain.TrialDescriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}

	var subject string
	if randomMode {
		subject = s.RandomSubject()
	} else {
		phase, gender, id, err := s.catalog.ParseSubject(manualSubject)
		if err != nil {
			return domain.TrialDescriptor{}, err
		}
		subject = phase + gender + id
	}

	quizzable := s.catalog.Quizzable()
	desc := domain.TrialDescriptor{
		ID:            s.newID(),
		SubjectID:     subject,
		TargetEmotion: quizzable[s.rnd.Intn(len(quizzable))],
		Angle:         spec.Allowed[s.rnd.Intn(len(spec.Allowed))],
		Tier:          tier,
	}
	if s.catalog.PositionModeled() {
		desc.Position = s.position(spec)
	}
	return desc, nil
}

// RandomSubject draws phase, gender and id independently.
func (s *Selector) RandomSubject() string {
	space := s.catalog.Subjects
	return space.Phases[s.rnd.Intn(len(space.Phases))] +
		space.Genders[s.rnd.Intn(len(space.Genders))] +
		space.IDs[s.rnd.Intn(len(space.IDs))]
}

func (s *Selector) position(spec domain.TierSpec) domain.Position {
	if spec.PinnedPosition != "" {
		return spec.PinnedPosition
	}
	return s.catalog.Positions[s.rnd.Intn(len(s.catalog.Positions))]
}
