package model

import (
	"errors"
	"testing"
)

func TestResult_Success(t *testing.T) {
	user := NewUserBuilder().UID("u1").Build()
	result := Success(user)

	if !result.IsSuccess() || result.IsFailure() {
		t.Error("success result reported wrong variant")
	}
	if result.Value() != user {
		t.Error("Value should return the wrapped user")
	}
	if result.Err() != nil {
		t.Errorf("Err = %v, want nil", result.Err())
	}
	if result.ValueOrDefault(nil) != user {
		t.Error("ValueOrDefault should ignore the default on success")
	}
}

func TestResult_Failure(t *testing.T) {
	cause := errors.New("provider unavailable")
	result := Failure[*User](cause)

	if result.IsSuccess() || !result.IsFailure() {
		t.Error("failure result reported wrong variant")
	}
	if result.Value() != nil {
		t.Error("Value should be the zero value on failure")
	}
	if !errors.Is(result.Err(), cause) {
		t.Errorf("Err = %v, want %v", result.Err(), cause)
	}

	fallback := NewUserBuilder().UID("fallback").Build()
	if result.ValueOrDefault(fallback) != fallback {
		t.Error("ValueOrDefault should return the default on failure")
	}
}

func TestResult_VoidSuccess(t *testing.T) {
	result := Success(Void{})
	if !result.IsSuccess() {
		t.Error("void success should be a success")
	}
}
