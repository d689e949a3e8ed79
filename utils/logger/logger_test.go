package logger

import "testing"

func TestRedactSecretKeys(t *testing.T) {
	in := []interface{}{"user_id", 7, "refresh_token", "abc", "Password", "hunter2", "course_id", 3}
	out := redact(in)

	if out[3] != "[REDACTED]" || out[5] != "[REDACTED]" {
		t.Fatalf("secrets not redacted: %v", out)
	}
	if out[1] != 7 || out[7] != 3 {
		t.Fatalf("plain values changed: %v", out)
	}
	if in[3] != "abc" {
		t.Fatalf("redact must not mutate its input")
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
