package entities

import (
	"encoding/json"
	"math"
	"unicode/utf8"
)

// ExcerptRunes is how much of a source passage the views show.
const ExcerptRunes = 200

// Citation is one retrieved passage backing an answer.
type Citation struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"` // always within [0,1] once built by NewCitation
}

// NewCitation builds a citation, clamping the score into [0,1].
// NaN becomes 0. adjusted reports whether the score had to be changed.
func NewCitation(content string, score float64) (c Citation, adjusted bool) {
	clamped := ClampScore(score)
	return Citation{Content: content, Score: clamped}, clamped != score
}

// ClampScore maps any float into [0,1].
func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

// DisplayPercent is round(score*100), never outside [0,100].
func (c Citation) DisplayPercent() int {
	return int(math.Round(ClampScore(c.Score) * 100))
}

// Excerpt returns at most limit runes of the content, suffixed with "..."
// when it was cut. The stored content is never modified.
func (c Citation) Excerpt(limit int) string {
	if limit <= 0 || utf8.RuneCountInString(c.Content) <= limit {
		return c.Content
	}
	runes := []rune(c.Content)
	return string(runes[:limit]) + "..."
}

// MarshalJSON adds the rendered percent and excerpt so browser clients show
// exactly what the terminal does. Decoding ignores the extra fields.
func (c Citation) MarshalJSON() ([]byte, error) {
	type plain Citation
	return json.Marshal(struct {
		plain
		DisplayPercent int    `json:"display_percent"`
		Excerpt        string `json:"excerpt"`
	}{
		plain:          plain(c),
		DisplayPercent: c.DisplayPercent(),
		Excerpt:        c.Excerpt(ExcerptRunes),
	})
}
