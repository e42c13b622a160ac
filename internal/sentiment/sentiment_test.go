package sentiment

import (
	"testing"
	"time"

	"github.com/pedrolima/newsmood/internal/feed"
)

func TestLabelForCutoffs(t *testing.T) {
	thresholds := Thresholds{Negative: -0.5, Positive: 0.5}

	tests := []struct {
		compound float64
		want     Label
	}{
		{-0.9, Negative},
		{-0.5, Negative}, // boundary is inclusive
		{-0.2, Neutral},
		{0.0, Neutral},
		{0.5, Positive}, // boundary is inclusive
		{0.95, Positive},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.compound, thresholds); got != tt.want {
			t.Errorf("LabelFor(%.2f) = %s, want %s", tt.compound, got, tt.want)
		}
	}
}

func TestLabelForNarrowBand(t *testing.T) {
	thresholds := Thresholds{Negative: -0.05, Positive: 0.05}

	if got := LabelFor(-0.04, thresholds); got != Neutral {
		t.Errorf("score inside band should be Neutral, got %s", got)
	}
	if got := LabelFor(-0.06, thresholds); got != Negative {
		t.Errorf("score below band should be Negative, got %s", got)
	}
	if got := LabelFor(0.06, thresholds); got != Positive {
		t.Errorf("score above band should be Positive, got %s", got)
	}
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name string
		t    Thresholds
		ok   bool
	}{
		{"defaults", Thresholds{-0.05, 0.05}, true},
		{"full range", Thresholds{-1, 1}, true},
		{"inverted", Thresholds{0.5, -0.5}, false},
		{"equal", Thresholds{0.1, 0.1}, false},
		{"out of range", Thresholds{-2, 0.5}, false},
	}
	for _, tt := range tests {
		err := tt.t.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestScorerPolarity(t *testing.T) {
	s := NewScorer()

	happy := s.Score("Wonderful news: everyone celebrates the great victory")
	sad := s.Score("Horrific disaster kills dozens in tragic catastrophe")

	if happy <= 0 {
		t.Errorf("expected positive compound for happy text, got %.3f", happy)
	}
	if sad >= 0 {
		t.Errorf("expected negative compound for grim text, got %.3f", sad)
	}
	if happy < -1 || happy > 1 || sad < -1 || sad > 1 {
		t.Errorf("compound scores out of [-1,1]: %.3f, %.3f", happy, sad)
	}
}

func TestScoreAllKeepsAllHeadlines(t *testing.T) {
	s := NewScorer()
	now := time.Now().UTC()
	headlines := []feed.Headline{
		{Source: "BBC", Title: "Stocks soar on excellent earnings", Published: now},
		{Source: "Reuters", Title: "Flood devastates coastal town", Published: now},
		{Source: "Guardian", Title: "Parliament to debate bill", Published: now},
	}

	records := s.ScoreAll(headlines)
	if len(records) != len(headlines) {
		t.Fatalf("expected %d records, got %d", len(headlines), len(records))
	}
	for _, r := range records {
		if r.Compound < -1 || r.Compound > 1 {
			t.Errorf("compound %.3f out of range for %q", r.Compound, r.Title)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer()
	const text = "Breakthrough treatment offers hope to patients"
	if s.Score(text) != s.Score(text) {
		t.Error("scoring the same text twice should be deterministic")
	}
}
