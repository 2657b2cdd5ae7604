package app

import (
	"context"
	"fmt"
	"time"

	"emotion-quiz-service/internal/assets"
	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
	"emotion-quiz-service/internal/exposure"
	"github.com/google/uuid"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	// GetOrCreate returns the stored session or stores the one built by create.
	GetOrCreate(sessionID string, create func() *Session) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CatalogRepository loads stimulus catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// Options tune every session the service opens.
type Options struct {
	// DefaultCatalog is used when Open is called without a catalog id.
	DefaultCatalog  string
	DefaultExposure time.Duration
	MinExposure     time.Duration
	MaxExposure     time.Duration
	// AssetBaseURL overrides the catalog's own asset base when set.
	AssetBaseURL string
	Scheduler    exposure.Scheduler
	// Seed makes trial selection reproducible; zero seeds from the clock.
	Seed      int64
	LogTrials bool
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultCatalog == "" {
		o.DefaultCatalog = catalog.DefaultID
	}
	if o.DefaultExposure <= 0 {
		o.DefaultExposure = 200 * time.Millisecond
	}
	if o.MinExposure <= 0 {
		o.MinExposure = 10 * time.Millisecond
	}
	if o.MaxExposure <= 0 {
		o.MaxExposure = 5 * time.Second
	}
	if o.Scheduler == nil {
		o.Scheduler = exposure.WallClock{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// QuizService contains the quiz use cases; every command addresses a session by id.
type QuizService struct {
	sessions SessionRepository
	catalogs CatalogRepository
	opts     Options
}

func NewQuizService(store SessionRepository, catalogs CatalogRepository, opts Options) *QuizService {
	return &QuizService{sessions: store, catalogs: catalogs, opts: opts.withDefaults()}
}

// Open creates a session bound to catalogID, or reattaches to an existing one.
// Empty ids fall back to a fresh session id and the default catalog. Every Open
// counts as one holder of the session until Release.
func (s *QuizService) Open(ctx context.Context, sessionID, catalogID string) (domain.Snapshot, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if existing, ok := s.sessions.Get(sessionID); ok {
		existing.attach()
		return existing.Snapshot(), nil
	}
	if catalogID == "" {
		catalogID = s.opts.DefaultCatalog
	}
	cat, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := cat.Validate(); err != nil {
		return domain.Snapshot{}, err
	}
	session := s.sessions.GetOrCreate(sessionID, func() *Session {
		return NewSession(sessionID, cat, s.opts)
	})
	session.attach()
	return session.Snapshot(), nil
}

// Release drops one holder taken by Open and closes the session when none remain.
func (s *QuizService) Release(ctx context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if session.detach() > 0 {
		return
	}
	s.Close(ctx, sessionID)
}

// Close aborts the active trial and forgets the session regardless of holders.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.shutdown()
	s.sessions.Delete(sessionID)
}

// Catalog returns reference data for the renderer's buttons and selectors.
func (s *QuizService) Catalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	if catalogID == "" {
		catalogID = s.opts.DefaultCatalog
	}
	return s.catalogs.GetCatalog(ctx, catalogID)
}

// Subjects lists the subject ids of a catalog for the manual selector. An empty
// phase lists every phase; an unknown one is ErrInvalidSubject.
func (s *QuizService) Subjects(ctx context.Context, catalogID, phase string) ([]string, error) {
	cat, err := s.Catalog(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	if phase == "" {
		var out []string
		for _, p := range cat.Subjects.Phases {
			out = append(out, cat.SubjectsInPhase(p)...)
		}
		return out, nil
	}
	for _, p := range cat.Subjects.Phases {
		if p == phase {
			return cat.SubjectsInPhase(p), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidSubject, phase)
}

// Subscribe returns a channel that receives render frames for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Frame, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

func (s *QuizService) Snapshot(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) SetDifficulty(_ context.Context, sessionID string, tier domain.Tier) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.SetDifficulty(tier)
}

func (s *QuizService) SetRandomMode(_ context.Context, sessionID string, enabled bool) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	session.SetRandomMode(enabled)
	return nil
}

func (s *QuizService) SelectManualSubject(_ context.Context, sessionID, subject string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.SelectManualSubject(subject)
}

// StartTrial begins a new trial; a zero exposure uses the configured default.
func (s *QuizService) StartTrial(_ context.Context, sessionID string, exposureDuration time.Duration) (domain.TrialMeta, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.TrialMeta{}, err
	}
	d, err := s.exposure(exposureDuration)
	if err != nil {
		return domain.TrialMeta{}, err
	}
	return session.StartTrial(d)
}

func (s *QuizService) SelectEmotion(_ context.Context, sessionID string, code domain.EmotionCode) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.SelectEmotion(code)
}

func (s *QuizService) SubmitAnswer(_ context.Context, sessionID string) (domain.SubmitResult, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	return session.SubmitAnswer()
}

func (s *QuizService) ReportLoadFailure(_ context.Context, sessionID string, asset domain.AssetID) (assets.LoadOutcome, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return assets.LoadOutcome{}, err
	}
	return session.ReportLoadFailure(asset)
}

func (s *QuizService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) exposure(d time.Duration) (time.Duration, error) {
	if d == 0 {
		return s.opts.DefaultExposure, nil
	}
	if d < s.opts.MinExposure || d > s.opts.MaxExposure {
		return 0, fmt.Errorf("%w: %s not in [%s, %s]", domain.ErrInvalidExposure, d, s.opts.MinExposure, s.opts.MaxExposure)
	}
	return d, nil
}
