package flix

import "testing"

func TestChain_Done(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{ChainInProgress, false},
		{ChainCompleted, true},
		{ChainErrored, true},
		{ChainTimedOut, true},
		{"queued", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := (Chain{Status: tc.status}).Done(); got != tc.want {
			t.Errorf("Done() with status %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}
