package domain

// Stage names a pipeline step for user-facing status messages.
type Stage string

const (
	StageRecognition Stage = "recognition"
	StageRecheck     Stage = "recheck"
	StageBackfill    Stage = "backfill"
)

// Warning is a recoverable degradation surfaced to the user as a status message.
// Subject identifies the affected unit: an image name, a word, or empty for a batch.
type Warning struct {
	Stage   Stage  `json:"stage"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}
