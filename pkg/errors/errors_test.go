package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidPOM, "parse %s", "http://repo/a.pom")
	if got := err.Error(); got != "INVALID_POM: parse http://repo/a.pom" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(ErrCodeNetwork, stderrors.New("connection refused"), "fetch %s", "central")
	if !strings.Contains(wrapped.Error(), "connection refused") {
		t.Errorf("wrapped error should include cause, got %q", wrapped.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeVersionNotFound, "no such version")
	if !Is(err, ErrCodeVersionNotFound) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeInvalidPOM) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeVersionNotFound) {
		t.Error("Is() should not match plain errors")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeRepositoryUnresolved, "no host for com.x:y")
	outer := Wrap(ErrCodeInternal, inner, "resolve failed")

	// errors.As finds the outermost *Error, which carries INTERNAL_ERROR.
	if !Is(outer, ErrCodeInternal) {
		t.Error("outer code should win")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeDownload, "x")); got != ErrCodeDownload {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeDownload)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidManifest, "pom.xml is malformed")
	if got := UserMessage(err); got != "pom.xml is malformed" {
		t.Errorf("UserMessage() = %q", got)
	}
	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage() = %q", got)
	}
}
