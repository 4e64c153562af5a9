package models

// RenderState is the lifecycle of a render attempt.
type RenderState string

const (
	RenderStateInit      RenderState = "init"
	RenderStateInvoking  RenderState = "invoking"
	RenderStateRendering RenderState = "rendering"
	RenderStateDone      RenderState = "done"
	RenderStateError     RenderState = "error"
)

// Terminal reports whether the state is an end state of an attempt.
func (s RenderState) Terminal() bool {
	return s == RenderStateDone || s == RenderStateError
}

// RenderInputProps carries the composition data a render backend needs.
type RenderInputProps struct {
	Overlays         []Overlay `json:"overlays"`
	DurationInFrames int       `json:"durationInFrames" validate:"required,gte=1"`
	FPS              int       `json:"fps" validate:"required,gte=1"`
	Width            int       `json:"width" validate:"required,gte=1"`
	Height           int       `json:"height" validate:"required,gte=1"`
	Src              string    `json:"src,omitempty"`
}

// RenderInput is the full submission payload for a render job.
type RenderInput struct {
	ID         string           `json:"id" validate:"required"`
	InputProps RenderInputProps `json:"inputProps"`
}

// RenderJob tracks one render attempt. It is transient state owned by the
// orchestrator and is never persisted.
type RenderJob struct {
	JobID        *string     `json:"job_id"` // backend-assigned; nil before submit or on early failure
	Status       RenderState `json:"status"`
	Progress     float64     `json:"progress"` // in [0,1) while rendering
	OutputURL    string      `json:"output_url,omitempty"`
	OutputSize   int64       `json:"output_size,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}
