package llm

// Finish reasons that mean the candidate ended normally. Any other
// non-empty reason is a refusal.
const (
	FinishReasonStop      = "STOP"
	FinishReasonMaxTokens = "MAX_TOKENS"
)

// Part is one content part of a request or candidate. It is a closed set:
// TextPart or ImagePart.
type Part interface {
	isPart()
}

// TextPart is plain text content
type TextPart struct {
	Text string
}

// ImagePart is an inline image. Data is base64 encoded.
type ImagePart struct {
	MIMEType string
	Data     string
}

func (TextPart) isPart()  {}
func (ImagePart) isPart() {}

// Request is a single image generation call.
type Request struct {
	Model       string
	Parts       []Part // sent in order
	AspectRatio string
	ImageSize   string // provider size token, empty for the model default
	Seed        *int64
}

// Candidate is one alternative answer returned by the service.
type Candidate struct {
	FinishReason  string
	FinishMessage string
	Parts         []Part
}

// Refused reports whether the candidate carries a non-normal finish reason
func (c Candidate) Refused() bool {
	switch c.FinishReason {
	case "", FinishReasonStop, FinishReasonMaxTokens:
		return false
	default:
		return true
	}
}

// Response is the decoded service answer
type Response struct {
	Candidates []Candidate
}
