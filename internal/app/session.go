package app

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"emotion-quiz-service/internal/assets"
	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
	"emotion-quiz-service/internal/exposure"
	"emotion-quiz-service/internal/feedback"
	"emotion-quiz-service/internal/selector"
)

// Session owns the state of one quiz taker. All mutation happens under mu; timer
// callbacks re-enter through onTransition and are dropped when their generation is stale.
type Session struct {
	id        string
	catalog   domain.Catalog
	selector  *selector.Selector
	locator   *assets.Locator
	sched     exposure.Scheduler
	now       func() time.Time
	logTrials bool

	mu            sync.Mutex
	tier          domain.Tier
	randomMode    bool
	manualSubject string
	selected      domain.EmotionCode
	trial         *activeTrial
	inProgress    bool
	generation    uint64
	tally         feedback.Tally
	lastFrame     domain.Frame
	subscribers   map[chan domain.Frame]struct{}
	holders       int
}

type activeTrial struct {
	desc    domain.TrialDescriptor
	meta    domain.TrialMeta
	seq     *exposure.Sequencer
	tracker *assets.Tracker
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, cat domain.Catalog, opts Options) *Session {
	opts = opts.withDefaults()
	sel := selector.New(cat)
	if opts.Seed != 0 {
		sel = selector.NewWithRand(cat, rand.New(rand.NewSource(opts.Seed)))
	}
	s := &Session{
		id:            id,
		catalog:       cat,
		selector:      sel,
		locator:       assets.NewLocator(cat, opts.AssetBaseURL),
		sched:         opts.Scheduler,
		now:           opts.Now,
		logTrials:     opts.LogTrials,
		tier:          domain.TierEasy,
		randomMode:    true,
		manualSubject: catalog.DefaultSubject,
		subscribers:   make(map[chan domain.Frame]struct{}),
	}
	if _, ok := cat.Tier(s.tier); !ok && len(cat.Tiers) > 0 {
		s.tier = cat.Tiers[0].Name
	}
	s.lastFrame = s.previewLocked()
	return s
}

// SetDifficulty switches tier and abandons the trial in progress.
func (s *Session) SetDifficulty(tier domain.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.catalog.Tier(tier)
	if !ok {
		return domain.ErrUnknownTier
	}
	s.tier = tier
	s.resetLocked()
	if s.logTrials {
		log.Printf("session %s: tier %s allows %v", s.id, tier, spec.Allowed)
	}
	return nil
}

// SetRandomMode toggles random subjects and abandons the trial in progress.
func (s *Session) SetRandomMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.randomMode = enabled
	s.resetLocked()
}

// SelectManualSubject sets the subject used when random mode is off.
func (s *Session) SelectManualSubject(subject string) error {
	phase, gender, id, err := s.catalog.ParseSubject(subject)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualSubject = phase + gender + id
	return nil
}

// StartTrial draws a stimulus and arms a fresh exposure sequence. Any sequence still
// running for the previous trial is canceled first.
func (s *Session) StartTrial(d time.Duration) (domain.TrialMeta, error) {
	s.mu.Lock()
	desc, err := s.selector.Select(s.tier, s.randomMode, s.manualSubject)
	if err != nil {
		s.mu.Unlock()
		return domain.TrialMeta{}, err
	}

	seq, err := exposure.New(s.sched, s.generation+1, d, s.onTransition)
	if err != nil {
		s.mu.Unlock()
		return domain.TrialMeta{}, err
	}
	s.cancelLocked()
	s.generation++
	trial := &activeTrial{
		desc:    desc,
		meta:    s.metaLocked(desc),
		seq:     seq,
		tracker: assets.NewTracker(s.locator, desc, s.catalog.Neutral),
	}
	s.trial = trial
	s.inProgress = true
	s.selected = ""
	if s.logTrials {
		log.Printf("session %s: trial %s subject=%s tier=%s angle=%s position=%s emotion=%s exposure=%s",
			s.id, desc.ID, desc.SubjectID, desc.Tier, desc.Angle, desc.Position, desc.TargetEmotion, d)
	}
	s.mu.Unlock()

	seq.Start()
	return trial.meta, nil
}

// SelectEmotion records the user's current choice; any catalog emotion is selectable.
func (s *Session) SelectEmotion(code domain.EmotionCode) error {
	if _, ok := s.catalog.Emotion(code); !ok {
		return domain.ErrUnknownEmotion
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = code
	return nil
}

// SubmitAnswer scores the selection against the current trial and completes it.
// Without a selection nothing changes and ErrNoAnswerSelected is returned.
func (s *Session) SubmitAnswer() (domain.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inProgress || s.trial == nil {
		return domain.SubmitResult{}, domain.ErrNoTrialInProgress
	}
	if s.selected == "" {
		return domain.SubmitResult{}, domain.ErrNoAnswerSelected
	}

	fb, err := feedback.Evaluate(s.catalog, s.selected, s.trial.desc,
		s.trial.tracker.Current(assets.SlotNeutral),
		s.trial.tracker.Current(assets.SlotExpression))
	if err != nil {
		return domain.SubmitResult{}, err
	}
	s.tally.Record(fb.Correct)
	s.inProgress = false
	return domain.SubmitResult{Feedback: fb, Tally: s.tally.Snapshot()}, nil
}

// ReportLoadFailure applies the single-retry fallback for an asset of the current trial.
func (s *Session) ReportLoadFailure(id domain.AssetID) (assets.LoadOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trial == nil {
		return assets.LoadOutcome{}, domain.ErrNoTrialInProgress
	}
	out, err := s.trial.tracker.ReportFailure(id)
	if err != nil {
		return out, err
	}
	if s.logTrials {
		log.Printf("session %s: load failed for %s (retry=%q broken=%v)", s.id, id, out.Retry, out.Broken)
	}
	if out.Retry != "" {
		frame := s.lastFrame
		frame.NeutralAsset = s.trial.tracker.Current(assets.SlotNeutral)
		frame.Expression = s.trial.tracker.Current(assets.SlotExpression)
		frame.VisibleAsset = s.visibleLocked(frame.Phase)
		frame.EmittedAt = s.now()
		s.publishLocked(frame)
	}
	return out, nil
}

// Snapshot is a read-only view of the session.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := domain.Snapshot{
		SessionID:     s.id,
		CatalogID:     s.catalog.ID,
		Tier:          s.tier,
		RandomMode:    s.randomMode,
		ManualSubject: s.manualSubject,
		InProgress:    s.inProgress,
		Tally:         s.tally.Snapshot(),
		Preview:       s.lastFrame,
	}
	if s.selected != "" {
		selected := s.selected
		snap.Selected = &selected
	}
	if s.trial != nil {
		meta := s.trial.meta
		snap.Trial = &meta
	}
	return snap
}

func (s *Session) onTransition(tr exposure.Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trial == nil || tr.Generation != s.generation {
		return
	}
	s.publishLocked(domain.Frame{
		SessionID:           s.id,
		Phase:               tr.Phase,
		VisibleAsset:        s.visibleLocked(tr.Phase),
		NeutralAsset:        s.trial.tracker.Current(assets.SlotNeutral),
		Expression:          s.trial.tracker.Current(assets.SlotExpression),
		Progress:            tr.Progress,
		ProgressAnimationMs: tr.Animation.Milliseconds(),
		Trial:               s.trial.meta,
		EmittedAt:           s.now(),
	})
}

func (s *Session) visibleLocked(phase domain.Phase) domain.AssetID {
	if s.trial == nil {
		return s.lastFrame.VisibleAsset
	}
	if phase == domain.PhaseExposed {
		return s.trial.tracker.Current(assets.SlotExpression)
	}
	return s.trial.tracker.Current(assets.SlotNeutral)
}

// resetLocked abandons the trial, clears the selection and shows the tier preview.
func (s *Session) resetLocked() {
	s.cancelLocked()
	s.generation++
	s.trial = nil
	s.inProgress = false
	s.selected = ""
	s.publishLocked(s.previewLocked())
}

func (s *Session) cancelLocked() {
	if s.trial != nil {
		s.trial.seq.Cancel()
	}
}

func (s *Session) attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holders++
}

// detach returns the holders left.
func (s *Session) detach() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holders > 0 {
		s.holders--
	}
	return s.holders
}

func (s *Session) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.generation++
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// previewLocked is the default subject at the tier's first angle, shown before a trial.
func (s *Session) previewLocked() domain.Frame {
	spec, _ := s.catalog.Tier(s.tier)
	desc := domain.TrialDescriptor{
		SubjectID:     catalog.DefaultSubject,
		TargetEmotion: s.previewEmotion(),
		Tier:          s.tier,
	}
	if len(spec.Allowed) > 0 {
		desc.Angle = spec.Allowed[0]
	}
	if s.catalog.PositionModeled() {
		desc.Position = spec.PinnedPosition
		if desc.Position == "" {
			desc.Position = s.catalog.Positions[0]
		}
	}
	neutral, expression := s.locator.Pair(desc)
	meta := s.metaLocked(desc)
	meta.TrialID = ""
	return domain.Frame{
		SessionID:    s.id,
		Phase:        domain.PhaseNeutral,
		VisibleAsset: neutral,
		NeutralAsset: neutral,
		Expression:   expression,
		Trial:        meta,
		EmittedAt:    s.now(),
	}
}

func (s *Session) previewEmotion() domain.EmotionCode {
	if _, ok := s.catalog.Emotion("HA"); ok {
		return "HA"
	}
	return s.catalog.Quizzable()[0]
}

func (s *Session) metaLocked(desc domain.TrialDescriptor) domain.TrialMeta {
	meta := domain.TrialMeta{
		TrialID:          desc.ID,
		SubjectID:        desc.SubjectID,
		Angle:            desc.Angle,
		AngleDescription: s.catalog.AngleDescription(desc.Angle),
		Position:         desc.Position,
		Tier:             desc.Tier,
	}
	if _, gender, number, err := s.catalog.ParseSubject(desc.SubjectID); err == nil {
		meta.Gender = genderLabel(gender)
		meta.SubjectNumber = number
	}
	if spec, ok := s.catalog.Tier(desc.Tier); ok {
		meta.TierDescription = spec.FullDescription
		if meta.TierDescription == "" {
			meta.TierDescription = spec.Description
		}
	}
	return meta
}

func genderLabel(code string) string {
	switch code {
	case "F":
		return "female"
	case "M":
		return "male"
	default:
		return code
	}
}

func (s *Session) subscribe() (<-chan domain.Frame, func()) {
	ch := make(chan domain.Frame, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.lastFrame
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// publishLocked records frame as the latest and fans it out, dropping the oldest
// queued frame for subscribers that fall behind.
func (s *Session) publishLocked(frame domain.Frame) {
	s.lastFrame = frame
	for ch := range s.subscribers {
		select {
		case ch <- frame:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- frame
		}
	}
}
