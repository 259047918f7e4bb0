package main

import (
	"testing"

	"github.com/metaphox/quill/diag"
)

func TestSession_KeepsOnlyAcceptedChunks(t *testing.T) {
	s := &session{}
	if _, err := s.submit("int x = 1"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.submit("x = \"s\""); !diag.Is(err, diag.Type) {
		t.Fatalf("expected TypeError, got %v", err)
	}
	u, err := s.submit("x += 2")
	if err != nil {
		t.Fatalf("submit after rejected chunk: %v", err)
	}
	if len(s.lines) != 2 || len(u.Program.Children) != 2 {
		t.Errorf("session holds %d lines, program %s", len(s.lines), u.Program)
	}
	s.reset()
	if _, err := s.submit("x = 3"); !diag.Is(err, diag.Reference) {
		t.Errorf("x should be gone after reset, got %v", err)
	}
}

func TestSession_Unfinished(t *testing.T) {
	s := &session{}
	tests := []struct {
		src  string
		want bool
	}{
		{"fn f(): int {", true},
		{"fn f(): int {\n  return 1", true},
		{"fn f(): int {\n  return 1\n}", false},
		{"/* a comment", true},
		{"int x = ", true},
		{"int x = y", false},
		{"int 5", false},
	}
	for _, tc := range tests {
		if got := s.unfinished(tc.src); got != tc.want {
			t.Errorf("unfinished(%q) = %v, want %v", tc.src, got, tc.want)
		}
	}
}
