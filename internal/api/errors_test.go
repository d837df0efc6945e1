package api

import "testing"

func TestAPIErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  *APIError
		want string
	}{
		{"full", &APIError{Status: 404, Code: "not_found", ErrorCode: 2001, Message: "job not found or expired"}, "not_found (2001): job not found or expired"},
		{"no numeric code", &APIError{Status: 400, Code: "invalid_argument", Message: "otp is required"}, "invalid_argument: otp is required"},
		{"message only", &APIError{Message: "boom"}, "boom"},
		{"status only", &APIError{Status: 503}, "api error: 503"},
		{"empty", &APIError{}, "api error"},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
