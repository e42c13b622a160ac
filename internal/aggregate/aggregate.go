package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/pedrolima/newsmood/internal/sentiment"
)

// Params is the full set of user-adjustable render inputs. A fresh View is
// derived from the cached record set and these parameters on every render;
// nothing here triggers a fetch.
type Params struct {
	Sources        []string      // nil or empty = all sources
	Keyword        string        // case-insensitive substring match on title
	Lookback       time.Duration // gates the time series only
	BinSize        time.Duration
	ExcludeImputed bool // gates the time series only
	Thresholds     sentiment.Thresholds
	Now            time.Time // zero = time.Now().UTC()
}

// Row is a filtered record with its label under the current thresholds.
type Row struct {
	sentiment.Record
	Label sentiment.Label
}

type KPI struct {
	Headlines    int
	MeanCompound float64
	Positive     int
	Neutral      int
	Negative     int
}

type LabelCount struct {
	Label sentiment.Label
	Count int
}

// BucketMean is the per-source mean compound for one time bucket.
// Buckets with no records are omitted, never emitted as zero.
type BucketMean struct {
	Source      string
	BucketStart time.Time
	Mean        float64
	Smoothed    float64
	Count       int
}

type SourceSummary struct {
	Source    string
	Headlines int
	Mean      float64
	Min       float64
	Max       float64
	Positive  int
	Negative  int
}

// View is everything the presentation layer needs for one render pass.
type View struct {
	KPI          KPI
	Distribution []LabelCount
	Series       []BucketMean
	Summaries    []SourceSummary
	Rows         []Row
}

// Build derives a View from the cached records and the current parameters.
// Source toggles and the keyword select the working set for everything;
// the lookback window and the exclude-imputed flag additionally gate only
// the time series, since a stale or imputed timestamp distorts the chart
// but says nothing about whether the headline belongs in the counts.
func Build(records []sentiment.Record, p Params) View {
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows := filter(records, p)

	v := View{
		KPI:          kpis(rows),
		Distribution: distribution(rows),
		Summaries:    summaries(rows),
		Rows:         rows,
	}

	v.Series = series(chartRows(rows, p, now), p.BinSize)
	return v
}

// chartRows narrows the working set to what the time series may plot:
// records inside the lookback window, nothing future-dated, and, when
// requested, only records with a real publish time.
func chartRows(rows []Row, p Params, now time.Time) []Row {
	var cutoff time.Time
	if p.Lookback > 0 {
		cutoff = now.Add(-p.Lookback)
	}

	var out []Row
	for _, r := range rows {
		if !cutoff.IsZero() && r.Published.Before(cutoff) {
			continue
		}
		if r.Published.After(now) {
			continue
		}
		if p.ExcludeImputed && r.Imputed {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filter(records []sentiment.Record, p Params) []Row {
	active := make(map[string]bool, len(p.Sources))
	for _, s := range p.Sources {
		active[s] = true
	}
	keyword := strings.ToLower(strings.TrimSpace(p.Keyword))

	var rows []Row
	for _, r := range records {
		if len(active) > 0 && !active[r.Source] {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(r.Title), keyword) {
			continue
		}
		rows = append(rows, Row{Record: r, Label: sentiment.LabelFor(r.Compound, p.Thresholds)})
	}

	// Most polar first, matching the headline table ordering
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Compound > rows[j].Compound
	})
	return rows
}

func kpis(rows []Row) KPI {
	k := KPI{Headlines: len(rows)}
	if len(rows) == 0 {
		return k
	}

	var sum float64
	for _, r := range rows {
		sum += r.Compound
		switch r.Label {
		case sentiment.Positive:
			k.Positive++
		case sentiment.Negative:
			k.Negative++
		default:
			k.Neutral++
		}
	}
	k.MeanCompound = sum / float64(len(rows))
	return k
}

func distribution(rows []Row) []LabelCount {
	counts := make(map[sentiment.Label]int, 3)
	for _, r := range rows {
		counts[r.Label]++
	}

	out := make([]LabelCount, 0, 3)
	for _, l := range sentiment.AllLabels() {
		out = append(out, LabelCount{Label: l, Count: counts[l]})
	}
	return out
}

// series buckets rows per source by flooring the publish time to the bin
// size, then smooths each source's bucket means with a trailing moving
// average (window 3, at least 1 period). The smoothing policy is fixed so
// the chart is deterministic for a given bucketing.
func series(rows []Row, binSize time.Duration) []BucketMean {
	if binSize <= 0 {
		binSize = 5 * time.Minute
	}

	type key struct {
		source string
		bucket time.Time
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, r := range rows {
		k := key{source: r.Source, bucket: r.Published.Truncate(binSize)}
		sums[k] += r.Compound
		counts[k]++
	}

	perSource := make(map[string][]BucketMean)
	for k, sum := range sums {
		perSource[k.source] = append(perSource[k.source], BucketMean{
			Source:      k.source,
			BucketStart: k.bucket,
			Mean:        sum / float64(counts[k]),
			Count:       counts[k],
		})
	}

	sources := make([]string, 0, len(perSource))
	for s := range perSource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	var out []BucketMean
	for _, s := range sources {
		buckets := perSource[s]
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].BucketStart.Before(buckets[j].BucketStart)
		})
		smooth(buckets)
		out = append(out, buckets...)
	}
	return out
}

// smooth applies a trailing moving average of window 3 in place.
func smooth(buckets []BucketMean) {
	const window = 3
	for i := range buckets {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for j := start; j <= i; j++ {
			sum += buckets[j].Mean
		}
		buckets[i].Smoothed = sum / float64(i-start+1)
	}
}

func summaries(rows []Row) []SourceSummary {
	bySource := make(map[string]*SourceSummary)
	var order []string
	for _, r := range rows {
		s, ok := bySource[r.Source]
		if !ok {
			s = &SourceSummary{Source: r.Source, Min: r.Compound, Max: r.Compound}
			bySource[r.Source] = s
			order = append(order, r.Source)
		}
		s.Headlines++
		s.Mean += r.Compound // running sum, divided below
		if r.Compound < s.Min {
			s.Min = r.Compound
		}
		if r.Compound > s.Max {
			s.Max = r.Compound
		}
		switch r.Label {
		case sentiment.Positive:
			s.Positive++
		case sentiment.Negative:
			s.Negative++
		}
	}

	out := make([]SourceSummary, 0, len(order))
	for _, name := range order {
		s := bySource[name]
		s.Mean /= float64(s.Headlines)
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mean > out[j].Mean
	})
	return out
}
