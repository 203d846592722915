package models

// Roles accepted in a canonical chat message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Vendor identifiers accepted by the factory.
const (
	VendorOpenAI    = "openai"
	VendorGemini    = "gemini"
	VendorAnthropic = "anthropic"
	VendorAzure     = "azure"
)

// Message represents a single conversational message in the canonical schema.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the canonical, validated representation of a chat call.
// It is constructed per HTTP request and never stored.
type ChatRequest struct {
	Vendor      string
	Model       string
	Messages    []Message
	Temperature float64
	Stream      bool
}

// ChatResult captures a buffered (non-streaming) provider response.
type ChatResult struct {
	Content  string
	Model    string
	Usage    Usage
	Metadata map[string]any
}

// Usage records token accounting information reported by a vendor.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatEventType discriminates the variants of ChatEvent.
type ChatEventType string

const (
	// EventContent carries an incremental text delta.
	EventContent ChatEventType = "content"
	// EventMetadata carries non-content fields surfaced mid-stream.
	EventMetadata ChatEventType = "metadata"
	// EventError terminates the stream with a failure.
	EventError ChatEventType = "error"
	// EventDone terminates the stream normally.
	EventDone ChatEventType = "done"
)

// ChatEvent is one element of the canonical event sequence every adapter
// produces while streaming. A sequence consists of zero or more content or
// metadata events followed by exactly one terminal event (done or error).
type ChatEvent struct {
	Type     ChatEventType  `json:"type"`
	Delta    string         `json:"delta,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Terminal reports whether the event ends its sequence.
func (e ChatEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// Image sizes and qualities accepted by the image-capable vendors.
const (
	ImageSizeSquare    = "1024x1024"
	ImageSizeLandscape = "1792x1024"
	ImageSizePortrait  = "1024x1792"

	ImageQualityStandard = "standard"
	ImageQualityHD       = "hd"
)

// ImageRequest is the canonical, validated representation of an image call.
type ImageRequest struct {
	Vendor  string
	Prompt  string
	Size    string
	Quality string
}

// ImageResult holds one generated image. Exactly one of URL or Base64 is set,
// depending on what the vendor returned.
type ImageResult struct {
	URL            string
	Base64         string
	OriginalPrompt string
	RevisedPrompt  string
	Size           string
	Quality        string
}
