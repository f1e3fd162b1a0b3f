package spotify

// minArtistSimilarity is the floor below which the API's own ranking wins.
const minArtistSimilarity = 0.6

// bestArtistMatch picks the candidate whose name is closest to the query.
// When nothing clears minArtistSimilarity the first result is returned.
func bestArtistMatch(query string, candidates []spotifyArtist) (spotifyArtist, bool) {
	if len(candidates) == 0 {
		return spotifyArtist{}, false
	}

	want := normalizeArtistName(query)
	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := similarity(want, normalizeArtistName(c.Name))
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 || bestScore < minArtistSimilarity {
		return candidates[0], true
	}
	return candidates[best], true
}

func similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
