package main

import "math"

// Per-letter classification of a guess against a target word.
const (
	feedbackCorrect   = "correct"
	feedbackPartial   = "partial"
	feedbackIncorrect = "incorrect"
)

const wordLength = 5

// guessFeedback scores a guess against a target word using the standard
// two-pass Wordle algorithm. Both inputs must already match the
// [A-Z]{5} word contract.
//
// Pass 1 marks exact matches and counts the remaining target letters.
// Pass 2 resolves the rest left to right: a letter with remaining count
// is partial (and consumes one count), anything else is incorrect. This
// keeps repeated letters honest: a letter appearing k times in the
// target never yields more than k non-incorrect marks.
func guessFeedback(guess, target string) []string {
	res := make([]string, wordLength)

	var counts [26]int

	for i := 0; i < wordLength; i++ {
		if guess[i] == target[i] {
			res[i] = feedbackCorrect
		} else {
			counts[target[i]-'A']++
		}
	}

	for i := 0; i < wordLength; i++ {
		if res[i] == feedbackCorrect {
			continue
		}
		j := guess[i] - 'A'
		if counts[j] > 0 {
			res[i] = feedbackPartial
			counts[j]--
		} else {
			res[i] = feedbackIncorrect
		}
	}

	return res
}

// calculateScore rewards solving in fewer guesses: 100 points for a
// first-guess solve, decaying by 30% per additional guess, floored at 10.
func calculateScore(guessCount int) int {
	score := int(math.Round(100 * math.Pow(0.7, float64(guessCount-1))))
	if score < 10 {
		return 10
	}
	return score
}
