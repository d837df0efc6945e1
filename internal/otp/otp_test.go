package otp

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerateShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != Length {
			t.Fatalf("expected length %d, got %q", Length, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
	}
}

func TestGenerateUniqueRetries(t *testing.T) {
	calls := 0
	code, err := GenerateUnique(func(candidate string) (bool, error) {
		calls++
		// First two candidates collide.
		return calls <= 2, nil
	})
	if err != nil {
		t.Fatalf("generate unique: %v", err)
	}
	if code == "" {
		t.Fatal("expected a code")
	}
	if calls != 3 {
		t.Fatalf("expected 3 existence checks, got %d", calls)
	}
}

func TestGenerateUniqueExhaustion(t *testing.T) {
	_, err := GenerateUnique(func(string) (bool, error) {
		return true, nil
	})
	if err == nil {
		t.Fatal("expected error when every candidate collides")
	}
}

func TestGenerateUniquePropagatesCheckError(t *testing.T) {
	wantErr := fmt.Errorf("db closed")
	_, err := GenerateUnique(func(string) (bool, error) {
		return false, wantErr
	})
	if err == nil || !strings.Contains(err.Error(), "db closed") {
		t.Fatalf("expected check error, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ab3x9k \n"); got != "AB3X9K" {
		t.Fatalf("expected AB3X9K, got %q", got)
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"000000", true},
		{"abc123", false},
		{"ABC12", false},
		{"ABC1234", false},
		{"ABC-12", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Valid(tc.code); got != tc.want {
			t.Fatalf("Valid(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
