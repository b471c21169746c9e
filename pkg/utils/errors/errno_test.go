package errors

import (
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		service  int
		category int
		sequence int
		expected int
	}{
		{0, 0, 0, 0},
		{0, 1, 1, 1001},
		{0, 4, 0, 4000},
		{10, 8, 1, 1008001},
		{20, 7, 2, 2007002},
		{90, 10, 1, 9010001},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d_%d", tt.service, tt.category, tt.sequence), func(t *testing.T) {
			got := MakeCode(tt.service, tt.category, tt.sequence)
			if got != tt.expected {
				t.Errorf("MakeCode(%d, %d, %d) = %d, want %d",
					tt.service, tt.category, tt.sequence, got, tt.expected)
			}
		})
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		code             int
		expectedService  int
		expectedCategory int
		expectedSequence int
	}{
		{0, 0, 0, 0},
		{1001, 0, 1, 1},
		{4000, 0, 4, 0},
		{1008001, 10, 8, 1},
		{2007002, 20, 7, 2},
		{9010001, 90, 10, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.code), func(t *testing.T) {
			service, category, sequence := ParseCode(tt.code)
			if service != tt.expectedService || category != tt.expectedCategory || sequence != tt.expectedSequence {
				t.Errorf("ParseCode(%d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.code, service, category, sequence,
					tt.expectedService, tt.expectedCategory, tt.expectedSequence)
			}
		})
	}
}

func TestIsClientError(t *testing.T) {
	// Request errors (category 1)
	if !IsClientError(ErrInvalidParam.Code) {
		t.Error("IsClientError should be true for request errors")
	}
	// Rate limit errors (category 6)
	if !IsClientError(ErrTooManyRequests.Code) {
		t.Error("IsClientError should be true for rate limit errors")
	}
	// Internal errors (category 7)
	if IsClientError(ErrInternal.Code) {
		t.Error("IsClientError should be false for internal errors")
	}
}

func TestIsServerError(t *testing.T) {
	if !IsServerError(ErrInternal.Code) {
		t.Error("IsServerError should be true for internal errors")
	}
	if !IsServerError(ErrConfigInvalid.Code) {
		t.Error("IsServerError should be true for config errors")
	}
	if IsServerError(ErrInvalidParam.Code) {
		t.Error("IsServerError should be false for request errors")
	}
}

func TestErrnoError(t *testing.T) {
	err := ErrInvalidParam
	expected := "errno 1001: Invalid parameter"
	if got := err.Error(); got != expected {
		t.Errorf("Error() = %q, want %q", got, expected)
	}
}

func TestErrnoErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := ErrInvalidParam.WithCause(cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	if err.Code != ErrInvalidParam.Code {
		t.Error("WithCause should preserve the code")
	}
}

func TestErrnoWithMessage(t *testing.T) {
	err := ErrInvalidParam.WithMessage("custom message")

	if err.MessageEN != "custom message" {
		t.Errorf("WithMessage should set MessageEN, got %q", err.MessageEN)
	}

	if err.Code != ErrInvalidParam.Code {
		t.Error("WithMessage should preserve the code")
	}
}

func TestErrnoWithMessagef(t *testing.T) {
	err := ErrInvalidParam.WithMessagef("param %s is invalid", "query")
	expected := "param query is invalid"

	if err.MessageEN != expected {
		t.Errorf("WithMessagef should set MessageEN to %q, got %q", expected, err.MessageEN)
	}
}

func TestErrnoMessage(t *testing.T) {
	err := &Errno{
		Code:      1001,
		MessageEN: "English message",
		MessageZH: "中文消息",
	}

	if got := err.Message("en"); got != "English message" {
		t.Errorf("Message(en) = %q, want %q", got, "English message")
	}

	if got := err.Message("zh"); got != "中文消息" {
		t.Errorf("Message(zh) = %q, want %q", got, "中文消息")
	}

	if got := err.Message("zh-CN"); got != "中文消息" {
		t.Errorf("Message(zh-CN) = %q, want %q", got, "中文消息")
	}
}

func TestErrnoHTTPStatus(t *testing.T) {
	if got := ErrInvalidParam.HTTPStatus(); got != http.StatusBadRequest {
		t.Errorf("HTTPStatus() = %d, want %d", got, http.StatusBadRequest)
	}

	if got := ErrDocumentNotFound.HTTPStatus(); got != http.StatusNotFound {
		t.Errorf("HTTPStatus() = %d, want %d", got, http.StatusNotFound)
	}

	if got := ErrEmbeddingFailed.HTTPStatus(); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus() = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestErrnoGRPCStatus(t *testing.T) {
	if got := ErrInvalidParam.GRPCStatus(); got != codes.InvalidArgument {
		t.Errorf("GRPCStatus() = %v, want %v", got, codes.InvalidArgument)
	}

	if got := ErrDocumentNotFound.GRPCStatus(); got != codes.NotFound {
		t.Errorf("GRPCStatus() = %v, want %v", got, codes.NotFound)
	}

	if got := ErrProviderUnavailable.GRPCStatus(); got != codes.Unavailable {
		t.Errorf("GRPCStatus() = %v, want %v", got, codes.Unavailable)
	}
}

func TestErrnoIs(t *testing.T) {
	err1 := ErrInvalidParam.WithMessage("custom")

	if !err1.Is(ErrInvalidParam) {
		t.Error("Is() should return true for same code")
	}

	if err1.Is(ErrNotFound) {
		t.Error("Is() should return false for different code")
	}
}

func TestIsCode(t *testing.T) {
	err := ErrInvalidParam.WithMessage("test")

	if !IsCode(err, ErrInvalidParam.Code) {
		t.Error("IsCode should return true")
	}

	if IsCode(err, ErrNotFound.Code) {
		t.Error("IsCode should return false")
	}
}

func TestGetCode(t *testing.T) {
	err := ErrInvalidParam.WithMessage("test")

	if got := GetCode(err); got != ErrInvalidParam.Code {
		t.Errorf("GetCode() = %d, want %d", got, ErrInvalidParam.Code)
	}

	if got := GetCode(fmt.Errorf("plain error")); got != -1 {
		t.Errorf("GetCode() for plain error = %d, want -1", got)
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(nil); got != nil {
		t.Error("FromError(nil) should return nil")
	}

	err := ErrInvalidParam.WithMessage("test")
	if got := FromError(err); got != err {
		t.Error("FromError should return Errno as-is")
	}

	plainErr := fmt.Errorf("plain error")
	result := FromError(plainErr)
	if result.Code != ErrInternal.Code {
		t.Errorf("FromError(plain) should wrap as ErrInternal, got code %d", result.Code)
	}
	if result.Unwrap() != plainErr {
		t.Error("FromError should preserve the cause")
	}
}

func TestLookup(t *testing.T) {
	if e, ok := Lookup(ErrInvalidParam.Code); !ok || e != ErrInvalidParam {
		t.Error("Lookup should find registered errno")
	}

	if _, ok := Lookup(9999999); ok {
		t.Error("Lookup should return false for non-existing code")
	}
}

func TestGetAllRegistered(t *testing.T) {
	all := GetAllRegistered()
	if len(all) == 0 {
		t.Error("GetAllRegistered should return non-empty map")
	}

	// Verify it's a copy
	all[9999999] = &Errno{Code: 9999999}
	if _, ok := Lookup(9999999); ok {
		t.Error("GetAllRegistered should return a copy")
	}
}
