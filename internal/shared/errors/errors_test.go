package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorTaxonomyStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantKind   error
	}{
		{name: "invalid input", err: InvalidInput("bad age"), wantCode: "INVALID_INPUT", wantStatus: http.StatusBadRequest, wantKind: ErrInvalidInput},
		{name: "invalid token", err: InvalidToken("nope"), wantCode: "INVALID_TOKEN", wantStatus: http.StatusBadRequest, wantKind: ErrInvalidToken},
		{name: "unconfigured", err: Unconfigured("api key"), wantCode: "UNCONFIGURED", wantStatus: http.StatusInternalServerError, wantKind: ErrUnconfigured},
		{name: "timeout", err: Timeout("too slow"), wantCode: "GENERATION_TIMEOUT", wantStatus: http.StatusGatewayTimeout, wantKind: ErrTimeout},
		{name: "no response", err: NoResponse("silence"), wantCode: "NO_RESPONSE", wantStatus: http.StatusInternalServerError, wantKind: ErrNoResponse},
		{name: "upstream", err: Upstream(fmt.Errorf("boom")), wantCode: "UPSTREAM_ERROR", wantStatus: http.StatusInternalServerError, wantKind: ErrUpstream},
		{name: "not found", err: NotFound("file"), wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound, wantKind: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
			if !Is(tt.err, tt.wantKind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantKind)
			}
		})
	}
}

func TestUpstreamPreservesCauseForLogs(t *testing.T) {
	cause := fmt.Errorf("rate limited by provider")
	err := Upstream(cause)

	// The user-facing message must not leak the upstream detail.
	if err.Message != "error communicating with the generation service" {
		t.Errorf("unexpected message %q", err.Message)
	}
	// The detail stays reachable through the chain for diagnostics.
	if !Is(err, cause) {
		t.Error("cause should remain in the error chain")
	}
}

func TestValidationCarriesDetails(t *testing.T) {
	err := Validation("invalid patient form", map[string]string{"age": "must be positive"})
	if err.Details["age"] != "must be positive" {
		t.Errorf("details = %v", err.Details)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("validation errors are invalid-input errors")
	}
}
