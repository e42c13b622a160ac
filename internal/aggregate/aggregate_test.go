package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/pedrolima/newsmood/internal/feed"
	"github.com/pedrolima/newsmood/internal/sentiment"
)

var testThresholds = sentiment.Thresholds{Negative: -0.05, Positive: 0.05}

func record(source, title string, published time.Time, compound float64) sentiment.Record {
	return sentiment.Record{
		Headline: feed.Headline{Source: source, Title: title, Link: "https://x.com/" + title, Published: published},
		Compound: compound,
	}
}

func sampleRecords(now time.Time) []sentiment.Record {
	return []sentiment.Record{
		record("BBC", "Storm batters coast", now.Add(-10*time.Minute), -0.6),
		record("BBC", "Team wins championship", now.Add(-20*time.Minute), 0.7),
		record("Reuters", "Markets flat ahead of report", now.Add(-30*time.Minute), 0.0),
		record("Reuters", "Peace talks show progress", now.Add(-2*time.Hour), 0.4),
		record("Guardian", "Factory closure costs jobs", now.Add(-3*time.Hour), -0.3),
	}
}

func baseParams(now time.Time) Params {
	return Params{
		Lookback:   24 * time.Hour,
		BinSize:    5 * time.Minute,
		Thresholds: testThresholds,
		Now:        now,
	}
}

func TestBuildKPIs(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	v := Build(sampleRecords(now), baseParams(now))

	if v.KPI.Headlines != 5 {
		t.Fatalf("expected 5 headlines, got %d", v.KPI.Headlines)
	}
	wantMean := (-0.6 + 0.7 + 0.0 + 0.4 - 0.3) / 5
	if math.Abs(v.KPI.MeanCompound-wantMean) > 1e-9 {
		t.Errorf("mean compound = %.4f, want %.4f", v.KPI.MeanCompound, wantMean)
	}
	if v.KPI.Positive != 2 || v.KPI.Neutral != 1 || v.KPI.Negative != 2 {
		t.Errorf("label counts = %d/%d/%d, want 2/1/2", v.KPI.Positive, v.KPI.Neutral, v.KPI.Negative)
	}
}

func TestBuildRowsSortedByCompound(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	v := Build(sampleRecords(now), baseParams(now))

	for i := 1; i < len(v.Rows); i++ {
		if v.Rows[i-1].Compound < v.Rows[i].Compound {
			t.Fatalf("rows not sorted by compound desc at %d: %.2f < %.2f", i, v.Rows[i-1].Compound, v.Rows[i].Compound)
		}
	}
}

func TestKeywordFilterCaseInsensitive(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p := baseParams(now)
	p.Keyword = "MARKETS"

	v := Build(sampleRecords(now), p)
	if v.KPI.Headlines != 1 {
		t.Fatalf("expected 1 match for keyword, got %d", v.KPI.Headlines)
	}
	if v.Rows[0].Title != "Markets flat ahead of report" {
		t.Errorf("unexpected match: %q", v.Rows[0].Title)
	}
}

func TestAbsentKeywordYieldsEmptyView(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p := baseParams(now)
	p.Keyword = "zzzzz"

	v := Build(sampleRecords(now), p)
	if v.KPI.Headlines != 0 {
		t.Errorf("expected zero headlines, got %d", v.KPI.Headlines)
	}
	if v.KPI.MeanCompound != 0 {
		t.Errorf("expected zero mean for empty set, got %.3f", v.KPI.MeanCompound)
	}
	if len(v.Series) != 0 {
		t.Errorf("expected empty series, got %d buckets", len(v.Series))
	}
	if len(v.Summaries) != 0 {
		t.Errorf("expected no summaries, got %d", len(v.Summaries))
	}
	for _, d := range v.Distribution {
		if d.Count != 0 {
			t.Errorf("expected zero %s count, got %d", d.Label, d.Count)
		}
	}
}

func TestSourceToggles(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p := baseParams(now)
	p.Sources = []string{"Reuters"}

	v := Build(sampleRecords(now), p)
	if v.KPI.Headlines != 2 {
		t.Fatalf("expected 2 Reuters headlines, got %d", v.KPI.Headlines)
	}
	for _, r := range v.Rows {
		if r.Source != "Reuters" {
			t.Errorf("unexpected source %s", r.Source)
		}
	}
}

func TestLookbackGatesSeriesOnly(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := []sentiment.Record{
		record("BBC", "Fresh story", now.Add(-10*time.Minute), 0.5),
		record("BBC", "Stale story", now.Add(-48*time.Hour), -0.5),
	}
	p := baseParams(now)
	p.Lookback = time.Hour

	v := Build(records, p)
	// KPIs, rows and summaries keep the stale record
	if v.KPI.Headlines != 2 {
		t.Errorf("expected 2 headlines in KPIs regardless of window, got %d", v.KPI.Headlines)
	}
	if len(v.Rows) != 2 {
		t.Errorf("expected 2 rows regardless of window, got %d", len(v.Rows))
	}
	// The chart does not
	if len(v.Series) != 1 {
		t.Fatalf("expected 1 series bucket inside the window, got %d", len(v.Series))
	}
	cutoff := now.Add(-p.Lookback)
	if v.Series[0].BucketStart.Before(cutoff.Truncate(p.BinSize)) {
		t.Errorf("series bucket %v lies before the window cutoff %v", v.Series[0].BucketStart, cutoff)
	}
}

func TestFutureRecordsOutOfSeries(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := append(sampleRecords(now), record("BBC", "From the future", now.Add(time.Hour), 0.9))

	v := Build(records, baseParams(now))
	for _, b := range v.Series {
		if b.BucketStart.After(now) {
			t.Errorf("record published after now leaked into series bucket %v", b.BucketStart)
		}
	}
}

func TestSeriesOmitsEmptyBuckets(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := []sentiment.Record{
		record("BBC", "A", now.Add(-10*time.Minute), 0.2),
		record("BBC", "B", now.Add(-3*time.Hour), -0.2),
	}
	p := baseParams(now)
	p.BinSize = time.Minute

	v := Build(records, p)
	if len(v.Series) != 2 {
		t.Fatalf("expected 2 non-empty buckets, got %d", len(v.Series))
	}
	for _, b := range v.Series {
		if b.Count == 0 {
			t.Error("empty bucket should be omitted, not emitted as zero")
		}
	}
}

func TestCoarserBinsNeverIncreaseBucketCount(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := sampleRecords(now)

	fine := baseParams(now)
	fine.BinSize = time.Minute
	coarse := baseParams(now)
	coarse.BinSize = time.Hour

	nFine := len(Build(records, fine).Series)
	nCoarse := len(Build(records, coarse).Series)
	if nCoarse > nFine {
		t.Errorf("1h bins produced %d buckets, 1m bins produced %d; coarser must not exceed finer", nCoarse, nFine)
	}
}

func TestSeriesBucketFloor(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	pub := time.Date(2026, 8, 30, 11, 37, 42, 0, time.UTC)
	records := []sentiment.Record{record("BBC", "A", pub, 0.5)}

	p := baseParams(now)
	p.BinSize = 15 * time.Minute

	v := Build(records, p)
	if len(v.Series) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(v.Series))
	}
	want := time.Date(2026, 8, 30, 11, 30, 0, 0, time.UTC)
	if !v.Series[0].BucketStart.Equal(want) {
		t.Errorf("bucket start = %v, want %v", v.Series[0].BucketStart, want)
	}
}

func TestSmoothingTrailingWindow(t *testing.T) {
	buckets := []BucketMean{
		{Mean: 0.9},
		{Mean: 0.3},
		{Mean: -0.3},
		{Mean: -0.9},
	}
	smooth(buckets)

	want := []float64{
		0.9,
		(0.9 + 0.3) / 2,
		(0.9 + 0.3 - 0.3) / 3,
		(0.3 - 0.3 - 0.9) / 3,
	}
	for i, w := range want {
		if math.Abs(buckets[i].Smoothed-w) > 1e-9 {
			t.Errorf("smoothed[%d] = %.4f, want %.4f", i, buckets[i].Smoothed, w)
		}
	}
}

func TestSmoothingDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := sampleRecords(now)
	p := baseParams(now)

	a := Build(records, p).Series
	b := Build(records, p).Series
	if len(a) != len(b) {
		t.Fatalf("series length differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("series[%d] differs between identical builds: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestExcludeImputedGatesSeriesOnly(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	undated := record("BBC", "Undated story", now, 0.5)
	undated.Imputed = true
	records := []sentiment.Record{
		undated,
		record("BBC", "Dated story", now.Add(-time.Hour), -0.5),
	}

	p := baseParams(now)
	p.ExcludeImputed = true

	v := Build(records, p)
	// KPIs and rows keep imputed records
	if v.KPI.Headlines != 2 {
		t.Errorf("expected 2 headlines in KPIs, got %d", v.KPI.Headlines)
	}
	// The series does not
	for _, b := range v.Series {
		if b.BucketStart.After(now.Add(-30 * time.Minute)) {
			t.Errorf("imputed record leaked into series bucket %v", b.BucketStart)
		}
	}
	if len(v.Series) != 1 {
		t.Errorf("expected 1 series bucket without imputed records, got %d", len(v.Series))
	}
}

func TestSummariesSortedByMeanDesc(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	v := Build(sampleRecords(now), baseParams(now))

	if len(v.Summaries) != 3 {
		t.Fatalf("expected 3 source summaries, got %d", len(v.Summaries))
	}
	for i := 1; i < len(v.Summaries); i++ {
		if v.Summaries[i-1].Mean < v.Summaries[i].Mean {
			t.Errorf("summaries not sorted by mean desc: %.3f < %.3f", v.Summaries[i-1].Mean, v.Summaries[i].Mean)
		}
	}
}

func TestSummaryStats(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p := baseParams(now)
	p.Sources = []string{"BBC"}

	v := Build(sampleRecords(now), p)
	if len(v.Summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(v.Summaries))
	}
	s := v.Summaries[0]
	if s.Headlines != 2 {
		t.Errorf("headlines = %d, want 2", s.Headlines)
	}
	if s.Min != -0.6 || s.Max != 0.7 {
		t.Errorf("min/max = %.2f/%.2f, want -0.60/0.70", s.Min, s.Max)
	}
	if math.Abs(s.Mean-0.05) > 1e-9 {
		t.Errorf("mean = %.4f, want 0.05", s.Mean)
	}
	if s.Positive != 1 || s.Negative != 1 {
		t.Errorf("pos/neg = %d/%d, want 1/1", s.Positive, s.Negative)
	}
}

func TestDistributionOrder(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	v := Build(sampleRecords(now), baseParams(now))

	wantOrder := []sentiment.Label{sentiment.Positive, sentiment.Neutral, sentiment.Negative}
	if len(v.Distribution) != 3 {
		t.Fatalf("expected 3 distribution entries, got %d", len(v.Distribution))
	}
	for i, l := range wantOrder {
		if v.Distribution[i].Label != l {
			t.Errorf("distribution[%d] = %s, want %s", i, v.Distribution[i].Label, l)
		}
	}
}

func TestThresholdChangeRelabelsWithoutRescore(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := []sentiment.Record{record("BBC", "Mild news", now.Add(-time.Minute), 0.3)}

	narrow := baseParams(now)
	v1 := Build(records, narrow)
	if v1.Rows[0].Label != sentiment.Positive {
		t.Errorf("0.3 under ±0.05 cutoffs should be Positive, got %s", v1.Rows[0].Label)
	}

	wide := baseParams(now)
	wide.Thresholds = sentiment.Thresholds{Negative: -0.5, Positive: 0.5}
	v2 := Build(records, wide)
	if v2.Rows[0].Label != sentiment.Neutral {
		t.Errorf("0.3 under ±0.5 cutoffs should be Neutral, got %s", v2.Rows[0].Label)
	}
	if v1.Rows[0].Compound != v2.Rows[0].Compound {
		t.Error("compound score must not change when thresholds change")
	}
}
