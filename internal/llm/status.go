package llm

import (
	"errors"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusCode extracts the HTTP status carried by an error returned from
// either SDK. It returns 0 for transport errors without a response.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	var aErr *apierror.APIError
	if errors.As(err, &aErr) {
		if code := aErr.HTTPCode(); code > 0 {
			return code
		}
		return grpcToHTTP(aErr.GRPCStatus().Code())
	}
	if st, ok := status.FromError(err); ok {
		return grpcToHTTP(st.Code())
	}
	return 0
}

// grpcToHTTP maps the gRPC codes the Gemini transport reports onto the HTTP
// statuses the retry policy understands. Unknown codes map to 0.
func grpcToHTTP(c codes.Code) int {
	switch c {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Internal:
		return http.StatusInternalServerError
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	}
	return 0
}

// IsRateLimited reports whether err carries a 429 response.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// Retryable reports whether a status code is worth another attempt.
// Client errors other than 408 and 429 are final.
func Retryable(code int) bool {
	switch {
	case code == 0:
		return true
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	}
	return false
}
