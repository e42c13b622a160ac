package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pedrolima/newsmood/internal/aggregate"
)

// Header is the column order of an export, matching the dashboard's record
// shape.
var Header = []string{"source", "title", "link", "published_dt", "is_imputed", "compound_score", "label"}

// WriteCSV writes the filtered rows exactly as rendered: one line per
// headline, timestamps in RFC 3339 UTC.
func WriteCSV(w io.Writer, rows []aggregate.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Source,
			r.Title,
			r.Link,
			r.Published.UTC().Format(time.RFC3339),
			strconv.FormatBool(r.Imputed),
			strconv.FormatFloat(r.Compound, 'f', 4, 64),
			string(r.Label),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns a timestamped export name, e.g.
// newsmood_20260830_120437.csv. Second granularity keeps rapid repeated
// exports from overwriting each other.
func Filename(now time.Time) string {
	return "newsmood_" + now.UTC().Format("20060102_150405") + ".csv"
}
