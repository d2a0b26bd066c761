package testutil

import (
	"net/http"

	"domainfactor/pkg/requestcontext"
)

// WithActor adds an admin actor to the request context.
// This simulates what the admin middleware would do for authenticated requests.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestMetadata adds a request ID and client IP to the request context,
// as the metadata middleware would.
func WithRequestMetadata(req *http.Request, requestID, clientIP string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	ctx = requestcontext.WithClientIP(ctx, clientIP)
	return req.WithContext(ctx)
}
