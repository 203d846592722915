package factory

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"genai-gateway/internal/config"
	"genai-gateway/internal/models"
	"genai-gateway/internal/provider"
	"genai-gateway/internal/provider/anthropic"
	"genai-gateway/internal/provider/azure"
	"genai-gateway/internal/provider/gemini"
	"genai-gateway/internal/provider/openai"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// New maps a vendor identifier plus runtime configuration to a constructed
// adapter. Construction is pure: no I/O, no credential validation. This is
// the single extension point for adding vendors.
func New(vendor string, cfg config.Config, client *http.Client) (provider.Adapter, error) {
	switch vendor {
	case models.VendorOpenAI:
		return openai.New(cfg.Vendors.OpenAI, client), nil
	case models.VendorGemini:
		return gemini.New(cfg.Vendors.Gemini, client), nil
	case models.VendorAnthropic:
		return anthropic.New(cfg.Vendors.Anthropic, client), nil
	case models.VendorAzure:
		return azure.New(cfg.Vendors.Azure, client), nil
	default:
		return nil, fmt.Errorf("%w: %q", provider.ErrUnsupportedVendor, vendor)
	}
}

// NewHTTPClient builds the shared outbound client. No overall client timeout
// is set: per-request deadlines come from the orchestrator's context so that
// timeout and client cancellation share one abort path, and long-lived
// streams are not cut off mid-flight.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
