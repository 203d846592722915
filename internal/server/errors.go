package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"genai-gateway/internal/provider"
	"genai-gateway/internal/ratelimit"
	"genai-gateway/internal/router"
	"genai-gateway/internal/validate"
)

// requestError is the transport-level error shape every failure maps onto.
type requestError struct {
	Status  int
	Message string
	Details []string
	Rate    *ratelimit.Result
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// gatewayErrorHandler renders every handler error as the canonical error
// body, attaching rate-limit headers when the failure carries window state.
func gatewayErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		if reqErr.Rate != nil {
			setRateHeaders(c, *reqErr.Rate)
			retryAfter := int(time.Until(reqErr.Rate.ResetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		}
		_ = c.JSON(reqErr.Status, errorBody{Error: reqErr.Message, Details: reqErr.Details})
		return
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		_ = c.JSON(echoErr.Code, errorBody{Error: http.StatusText(echoErr.Code)})
		return
	}

	_ = c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// toHTTPError maps the gateway's error taxonomy onto transport status codes:
// validation 400, rate limit 429, unknown vendor or capability 400,
// unconfigured vendor 503, vendor failures per classifyVendorError, timeout
// 504.
func toHTTPError(err error) error {
	var validationErr *validate.Error
	if errors.As(err, &validationErr) {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request validation failed",
			Details: validationErr.Details,
		}
	}

	var rateErr *router.RateLimitError
	if errors.As(err, &rateErr) {
		rate := rateErr.Rate
		return requestError{
			Status:  http.StatusTooManyRequests,
			Message: rateErr.Error(),
			Rate:    &rate,
		}
	}

	if errors.Is(err, provider.ErrUnsupportedVendor) || errors.Is(err, provider.ErrUnsupportedCapability) {
		return requestError{Status: http.StatusBadRequest, Message: err.Error()}
	}

	if errors.Is(err, provider.ErrNotConfigured) {
		return requestError{Status: http.StatusServiceUnavailable, Message: err.Error()}
	}

	var vendorErr *provider.VendorError
	if errors.As(err, &vendorErr) {
		return requestError{
			Status:  classifyVendorError(vendorErr),
			Message: vendorErr.Error(),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return requestError{Status: http.StatusGatewayTimeout, Message: "upstream request timed out"}
	}

	return requestError{Status: http.StatusInternalServerError, Message: err.Error()}
}

// classifyVendorError subclassifies an upstream failure by inspecting the
// vendor's message for known substrings: billing and quota problems map to
// 402, content-policy rejections to 400, vendor-side rate limiting to 429
// and authentication failures to 401. Anything unrecognized is a 500.
func classifyVendorError(err *provider.VendorError) int {
	message := strings.ToLower(err.Message)

	switch {
	case strings.Contains(message, "quota") || strings.Contains(message, "billing"):
		return http.StatusPaymentRequired
	case strings.Contains(message, "content policy") ||
		strings.Contains(message, "content_policy") ||
		strings.Contains(message, "safety"):
		return http.StatusBadRequest
	case err.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(message, "rate limit") ||
		strings.Contains(message, "rate_limit"):
		return http.StatusTooManyRequests
	case err.StatusCode == http.StatusUnauthorized ||
		err.StatusCode == http.StatusForbidden ||
		strings.Contains(message, "api key") ||
		strings.Contains(message, "unauthorized") ||
		strings.Contains(message, "authentication"):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
