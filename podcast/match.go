package podcast

import (
	"fmt"
	"strings"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

const (
	// MatchThreshold is the minimum similarity score for an episode to be
	// considered the one the URL pointed at.
	MatchThreshold = 0.5

	// DurationBonus rewards candidates whose length agrees with the
	// expected episode length.
	DurationBonus = 0.2

	// durationTolerance is how far apart two durations can be, in whole
	// minutes, and still count as agreeing.
	durationTolerance = 2
)

// Match is a successfully resolved episode from an RSS feed.
type Match struct {
	AudioURL string
	Title    string
	Score    float64
}

// FindBest scores every candidate against the target title and returns
// the best one when it clears the threshold. targetDuration in minutes
// may be 0 when unknown, which disables the duration bonus. The returned
// error carries the best score so callers can log how close a miss was.
func FindBest(candidates []models.EpisodeCandidate, targetTitle string, targetDuration int) (*Match, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no episodes found in RSS feed")
	}

	target := strings.ToLower(strings.TrimSpace(targetTitle))

	var best *models.EpisodeCandidate
	bestScore := 0.0
	for i := range candidates {
		cand := &candidates[i]
		score := ratio(target, strings.ToLower(strings.TrimSpace(cand.Title)))
		if targetDuration > 0 && cand.DurationMinutes > 0 {
			diff := targetDuration - cand.DurationMinutes
			if diff < 0 {
				diff = -diff
			}
			if diff <= durationTolerance {
				score += DurationBonus
			}
		}
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	if best == nil || bestScore < MatchThreshold {
		return nil, fmt.Errorf("no matching episode found (best score: %.2f)", bestScore)
	}

	audioURL := audioEnclosureURL(best.Enclosures)
	if audioURL == "" {
		return nil, fmt.Errorf("no audio URL found in episode %q", best.Title)
	}

	return &Match{AudioURL: audioURL, Title: best.Title, Score: bestScore}, nil
}

// audioEnclosureURL prefers an explicitly audio-typed enclosure, then
// falls back to one whose URL carries an audio file extension.
func audioEnclosureURL(enclosures []models.Enclosure) string {
	for _, enc := range enclosures {
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return enc.URL
		}
	}
	for _, enc := range enclosures {
		lower := strings.ToLower(enc.URL)
		for _, ext := range []string{".mp3", ".m4a", ".aac", ".ogg", ".wav"} {
			if strings.Contains(lower, ext) {
				return enc.URL
			}
		}
	}
	return ""
}

// ratio is a sequence similarity measure in [0, 1]: twice the number of
// characters in the longest matching blocks of the two strings, divided
// by their combined length. Identical strings score 1.0, disjoint ones
// 0.0, and the measure is order-sensitive.
func ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	matched := matchedChars(ar, br, 0, len(ar), 0, len(br))
	return 2 * float64(matched) / float64(total)
}

// matchedChars totals the sizes of the matching blocks found by
// recursively splitting around the longest common substring.
func matchedChars(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, k := longestMatch(a, b, alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return matchedChars(a, b, alo, i, blo, j) + k + matchedChars(a, b, i+k, ahi, j+k, bhi)
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] within the
// given windows, preferring the earliest block on ties.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (int, int, int) {
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj, bestsize := alo, blo, 0
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
