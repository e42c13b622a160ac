package sentiment

import (
	"fmt"

	"github.com/jonreiter/govader"

	"github.com/pedrolima/newsmood/internal/feed"
)

// Label is the classified polarity of a headline.
type Label string

const (
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
	Positive Label = "Positive"
)

// AllLabels returns the labels in display order.
func AllLabels() []Label {
	return []Label{Positive, Neutral, Negative}
}

// Thresholds are the two cutoffs that map a compound score to a Label.
type Thresholds struct {
	Negative float64
	Positive float64
}

func (t Thresholds) Validate() error {
	if t.Negative < -1 || t.Negative > 1 || t.Positive < -1 || t.Positive > 1 {
		return fmt.Errorf("thresholds %.2f/%.2f outside [-1, 1]", t.Negative, t.Positive)
	}
	if t.Negative >= t.Positive {
		return fmt.Errorf("negative cutoff %.2f must be below positive cutoff %.2f", t.Negative, t.Positive)
	}
	return nil
}

// LabelFor maps a compound score to a label under the given thresholds.
// Pure: cheap to recompute on every render when cutoffs change, so an
// adjustment never triggers a re-fetch or re-score.
func LabelFor(compound float64, t Thresholds) Label {
	switch {
	case compound <= t.Negative:
		return Negative
	case compound >= t.Positive:
		return Positive
	default:
		return Neutral
	}
}

// Record is a headline with its cached compound score. The label is not
// stored here; it is derived from the score and the current thresholds at
// render time.
type Record struct {
	feed.Headline
	Compound float64
}

// Scorer wraps the lexicon analyzer. The compound score is a single scalar
// in [-1, 1] summarizing polarity.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (s *Scorer) Score(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}

// ScoreAll scores every headline's title. A panicking analyzer drops that
// record instead of taking down the render.
func (s *Scorer) ScoreAll(headlines []feed.Headline) []Record {
	records := make([]Record, 0, len(headlines))
	for _, h := range headlines {
		if c, ok := s.scoreSafe(h.Title); ok {
			records = append(records, Record{Headline: h, Compound: c})
		}
	}
	return records
}

func (s *Scorer) scoreSafe(text string) (compound float64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return s.analyzer.PolarityScores(text).Compound, true
}
