package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrCatalogNotFound indicates the stimulus catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrInvalidCatalog indicates catalog data that breaks its own invariants.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnknownTier is returned for a difficulty tier the catalog does not define.
	ErrUnknownTier = errors.New("unknown difficulty tier")
	// ErrUnknownEmotion is returned for an emotion code the catalog does not define.
	ErrUnknownEmotion = errors.New("unknown emotion")
	// ErrInvalidSubject is returned for an empty or malformed manual subject.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrNoAnswerSelected is returned when submitting before an emotion was selected.
	ErrNoAnswerSelected = errors.New("select an emotion before submitting")
	// ErrNoTrialInProgress is returned when a command needs an active trial.
	ErrNoTrialInProgress = errors.New("no trial in progress")
	// ErrInvalidExposure is returned for an exposure duration outside the accepted range.
	ErrInvalidExposure = errors.New("invalid exposure duration")
	// ErrUnknownAsset is returned when a load failure names an asset outside the current trial.
	ErrUnknownAsset = errors.New("asset does not belong to the current trial")
)
