package helper

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     Credential
		wantKind Kind
	}{
		{name: "ok", raw: `{"Username":"VssSessionToken","Password":"abc"}`, want: Credential{"VssSessionToken", "abc"}},
		{name: "extra fields", raw: `{"Username":"u","Password":"p","Message":"hi"}`, want: Credential{"u", "p"}},
		{name: "trailing newline", raw: "{\"Username\":\"u\",\"Password\":\"p\"}\n", want: Credential{"u", "p"}},
		{name: "null password", raw: `{"Username":"u","Password":null}`, want: Credential{Username: "u"}},
		{name: "empty strings", raw: `{"Username":"","Password":""}`, want: Credential{}},
		{name: "missing password", raw: `{"Username":"u"}`, wantKind: KindMalformedPayload},
		{name: "missing username", raw: `{"Password":"p"}`, wantKind: KindMalformedPayload},
		{name: "not json", raw: `login required`, wantKind: KindMalformedPayload},
		{name: "empty", raw: ``, wantKind: KindMalformedPayload},
		{name: "null", raw: `null`, wantKind: KindMalformedPayload},
		{name: "array", raw: `["u","p"]`, wantKind: KindMalformedPayload},
		{name: "number password", raw: `{"Username":"u","Password":5}`, wantKind: KindMalformedPayload},
		{name: "invalid utf8", raw: "{\"Username\":\"u\",\"Password\":\"\xff\xfe\"}", wantKind: KindEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload([]byte(tt.raw))
			if tt.wantKind != 0 {
				if !IsKind(err, tt.wantKind) {
					t.Fatalf("error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindProcessFailed, PID: 42, ExitCode: 1, Diagnostic: "login failed\n"}
	want := "failed to get credentials: process with PID 42 exited with code 1; additional error message: login failed"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	err = &Error{Kind: KindProcessFailed, PID: 7, ExitCode: 3}
	if strings.Contains(err.Error(), "additional error message") {
		t.Fatalf("Error() = %q, should not mention empty diagnostic", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := error(&Error{Kind: KindEncoding, Err: inner})
	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to reach the wrapped error")
	}
	if IsKind(inner, KindEncoding) {
		t.Fatal("IsKind on a plain error should be false")
	}
}
