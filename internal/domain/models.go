package domain

import "time"

// EmotionCode identifies an emotion category in a catalog (e.g. "HA", "NE").
type EmotionCode string

// AngleCode identifies a viewing angle. In compound catalogs it also carries the side ("HL").
type AngleCode string

// Position is the left/right mirror side of a pose when modeled separately from the angle.
type Position string

const (
	PositionLeft  Position = "L"
	PositionRight Position = "R"
)

// Opposite returns the mirrored side.
func (p Position) Opposite() Position {
	if p == PositionLeft {
		return PositionRight
	}
	return PositionLeft
}

// Tier names a difficulty level.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// AssetID is the canonical identifier of one facial image.
type AssetID string

// Emotion is one entry of the catalog's emotion table.
type Emotion struct {
	Code  EmotionCode `json:"code"`
	Name  string      `json:"name"`
	Emoji string      `json:"emoji,omitempty"`
	Clues []string    `json:"clues"`
}

// TierSpec constrains which angles a trial may use.
type TierSpec struct {
	Name            Tier        `json:"name"`
	Allowed         []AngleCode `json:"allowed"`
	Description     string      `json:"description"`
	FullDescription string      `json:"fullDescription,omitempty"`
	// PinnedPosition fixes the mirror side for every trial of this tier instead of sampling it.
	PinnedPosition Position `json:"pinnedPosition,omitempty"`
}

// SubjectSpace is the cross-product of axes forming a subject identifier such as "AF03".
type SubjectSpace struct {
	Phases  []string `json:"phases"`
	Genders []string `json:"genders"`
	IDs     []string `json:"ids"`
}

// Contrast is a hand-authored explanation for answering Selected when Correct was shown.
type Contrast struct {
	Selected EmotionCode `json:"selected"`
	Correct  EmotionCode `json:"correct"`
	Hints    []string    `json:"hints"`
}

// AssetLayout describes how asset identifiers are composed.
type AssetLayout struct {
	BaseURL   string `json:"baseUrl"`
	Extension string `json:"extension"`
}

// Catalog is the immutable stimulus reference data for one dataset variant.
type Catalog struct {
	ID                string                  `json:"id"`
	Neutral           EmotionCode             `json:"neutral"`
	Emotions          []Emotion               `json:"emotions"`
	Tiers             []TierSpec              `json:"tiers"`
	Subjects          SubjectSpace            `json:"subjects"`
	Positions         []Position              `json:"positions,omitempty"` // empty when folded into angle codes
	Mirrors           map[AngleCode]AngleCode `json:"mirrors,omitempty"`
	AngleDescriptions map[AngleCode]string    `json:"angleDescriptions"`
	Contrasts         []Contrast              `json:"contrasts"`
	GenericHints      []string                `json:"genericHints"`
	Assets            AssetLayout             `json:"assets"`
}

// TrialDescriptor is the concrete stimulus for one trial.
type TrialDescriptor struct {
	ID            string      `json:"id"`
	SubjectID     string      `json:"subjectId"`
	TargetEmotion EmotionCode `json:"-"`
	Angle         AngleCode   `json:"angle"`
	Position      Position    `json:"position,omitempty"`
	Tier          Tier        `json:"tier"`
}

// Phase is the exposure state of the active trial.
type Phase string

const (
	PhaseNeutral   Phase = "neutral"
	PhaseRevealing Phase = "revealing"
	PhaseExposed   Phase = "exposed"
	PhaseReverting Phase = "reverting"
)

// TrialMeta is the descriptive data the renderer shows next to the images.
type TrialMeta struct {
	TrialID          string    `json:"trialId"`
	SubjectID        string    `json:"subjectId"`
	Gender           string    `json:"gender"`
	SubjectNumber    string    `json:"subjectNumber"`
	Angle            AngleCode `json:"angle"`
	AngleDescription string    `json:"angleDescription"`
	Position         Position  `json:"position,omitempty"`
	Tier             Tier      `json:"tier"`
	TierDescription  string    `json:"tierDescription"`
}

// Frame is one render update for a session.
type Frame struct {
	SessionID    string  `json:"sessionId"`
	Phase        Phase   `json:"phase"`
	VisibleAsset AssetID `json:"visibleAsset"`
	NeutralAsset AssetID `json:"neutralAsset"`
	Expression   AssetID `json:"expressionAsset"`
	Progress     float64 `json:"progress"`
	// ProgressAnimationMs is how long the renderer should take to reach Progress; zero is instantaneous.
	ProgressAnimationMs int64     `json:"progressAnimationMs"`
	Trial               TrialMeta `json:"trial"`
	EmittedAt           time.Time `json:"emittedAt"`
}

// Tally is the running score of a session.
type Tally struct {
	Score    int `json:"score"`
	Attempts int `json:"attempts"`
	Accuracy int `json:"accuracy"`
}

// Feedback is the explanation returned after an answer is submitted.
type Feedback struct {
	Correct      bool        `json:"correct"`
	Selected     EmotionCode `json:"selected"`
	SelectedName string      `json:"selectedName"`
	Target       EmotionCode `json:"target"`
	TargetName   string      `json:"targetName"`
	// Contrasts is empty on a correct answer.
	Contrasts []string `json:"contrasts,omitempty"`
	Clues     []string `json:"clues"`
	// Comparison holds the trial's neutral and expression assets on an incorrect answer.
	Comparison []AssetID `json:"comparison,omitempty"`
}

// SubmitResult is returned to the input layer after a submission.
type SubmitResult struct {
	Feedback Feedback `json:"feedback"`
	Tally    Tally    `json:"tally"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	SessionID     string       `json:"sessionId"`
	CatalogID     string       `json:"catalogId"`
	Tier          Tier         `json:"tier"`
	RandomMode    bool         `json:"randomMode"`
	ManualSubject string       `json:"manualSubject,omitempty"`
	Selected      *EmotionCode `json:"selected,omitempty"`
	InProgress    bool         `json:"inProgress"`
	Trial         *TrialMeta   `json:"trial,omitempty"`
	Tally         Tally        `json:"tally"`
	// Preview is the frame shown before the first trial, or the last frame of the current one.
	Preview Frame `json:"preview"`
}
