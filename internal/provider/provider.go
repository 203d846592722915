package provider

import (
	"context"
	"errors"
	"fmt"

	"genai-gateway/internal/models"
)

// ErrUnsupportedVendor indicates the requested vendor identifier is unknown.
var ErrUnsupportedVendor = errors.New("unsupported vendor")

// ErrUnsupportedCapability indicates the vendor cannot perform the requested
// operation (for example image generation from a chat-only vendor).
var ErrUnsupportedCapability = errors.New("unsupported capability")

// ErrNotConfigured indicates the vendor was selected but its credentials or
// endpoint are missing from configuration.
var ErrNotConfigured = errors.New("vendor is not configured")

// Adapter is the capability contract every vendor implementation satisfies.
// Polymorphism is over the capability set {chat, image, configuration}; an
// adapter that cannot satisfy a capability returns ErrUnsupportedCapability
// instead of attempting the call.
type Adapter interface {
	// Name returns the canonical vendor identifier.
	Name() string

	// IsConfigured reports whether required credentials are present. The
	// orchestrator checks this before invocation so misconfiguration fails
	// fast rather than on the first byte from the vendor.
	IsConfigured() bool

	// Chat performs one buffered request/response cycle.
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error)

	// ChatStream performs a streaming call and returns the canonical event
	// sequence decoded from the vendor's wire format.
	ChatStream(ctx context.Context, req models.ChatRequest) (*Stream, error)

	// GenerateImage produces a single image for the prompt.
	GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error)
}

// VendorError carries a failed upstream call's HTTP status and vendor name.
// The vendor's own message is preserved verbatim for diagnostics.
type VendorError struct {
	Vendor     string
	StatusCode int
	Message    string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s upstream error (status %d): %s", e.Vendor, e.StatusCode, e.Message)
}
