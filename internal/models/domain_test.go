package models

import "testing"

func TestParseJobStatus(t *testing.T) {
	cases := []struct {
		raw     string
		want    JobStatus
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"PENDING", StatusPending, false},
		{" Completed ", StatusCompleted, false},
		{"", "", true},
		{"printing", "", true},
		{"done", "", true},
	}
	for _, tc := range cases {
		got, err := ParseJobStatus(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseJobStatus(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseJobStatus(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseJobStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
