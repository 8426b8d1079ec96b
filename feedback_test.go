package main

import (
	"reflect"
	"testing"
)

func TestGuessFeedback(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		target string
		want   []string
	}{
		{
			name:   "exact match",
			guess:  "CRANE",
			target: "CRANE",
			want:   []string{"correct", "correct", "correct", "correct", "correct"},
		},
		{
			name:   "no overlap",
			guess:  "FUZZY",
			target: "CRANE",
			want:   []string{"incorrect", "incorrect", "incorrect", "incorrect", "incorrect"},
		},
		{
			name:   "single transposed letter",
			guess:  "CRANE",
			target: "STORM",
			want:   []string{"incorrect", "partial", "incorrect", "incorrect", "incorrect"},
		},
		{
			name:   "correct positions consume histogram first",
			guess:  "GEESE",
			target: "THESE",
			want:   []string{"incorrect", "incorrect", "correct", "correct", "correct"},
		},
		{
			name:   "repeated guess letter with one target occurrence left",
			guess:  "LLAMA",
			target: "LEVEL",
			want:   []string{"correct", "partial", "incorrect", "incorrect", "incorrect"},
		},
		{
			name:   "triple guess letter against single target letter",
			guess:  "EERIE",
			target: "CRANE",
			want:   []string{"incorrect", "incorrect", "partial", "incorrect", "correct"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := guessFeedback(tc.guess, tc.target)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("guessFeedback(%q, %q) = %v, want %v", tc.guess, tc.target, got, tc.want)
			}
		})
	}
}

// A letter appearing k times in the target can never produce more than
// k non-incorrect marks, no matter how often it recurs in the guess.
func TestGuessFeedbackMultisetBound(t *testing.T) {
	got := guessFeedback("EEEEE", "CRANE")

	nonIncorrect := 0
	for _, mark := range got {
		if mark != "incorrect" {
			nonIncorrect++
		}
	}

	if nonIncorrect != 1 {
		t.Errorf("guessFeedback(EEEEE, CRANE) produced %d non-incorrect marks, want 1: %v", nonIncorrect, got)
	}
	if got[4] != "correct" {
		t.Errorf("guessFeedback(EEEEE, CRANE)[4] = %q, want correct", got[4])
	}
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		guessCount int
		want       int
	}{
		{1, 100},
		{2, 70},
		{3, 49},
		{4, 34},
		{5, 24},
		{6, 17},
		{10, 10},
		{20, 10},
	}

	for _, tc := range tests {
		if got := calculateScore(tc.guessCount); got != tc.want {
			t.Errorf("calculateScore(%d) = %d, want %d", tc.guessCount, got, tc.want)
		}
	}
}

func TestCalculateScoreMonotonic(t *testing.T) {
	prev := calculateScore(1)
	for n := 2; n <= 15; n++ {
		score := calculateScore(n)
		if score > prev {
			t.Errorf("calculateScore(%d) = %d, greater than calculateScore(%d) = %d", n, score, n-1, prev)
		}
		if score < 10 {
			t.Errorf("calculateScore(%d) = %d, below floor of 10", n, score)
		}
		prev = score
	}
}
