// File: backend/internal/exporter/exporter.go
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

var csvHeader = []string{"originalUrl", "finalUrl", "status", "statusText", "responseTimeMs", "methodUsed", "group", "error"}

// WriteCSV renders results as CSV, one row per URL plus a header row.
func WriteCSV(w io.Writer, results []urlchecker.StatusResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.OriginalURL,
			r.FinalURL,
			strconv.Itoa(r.Status),
			r.StatusText,
			strconv.FormatInt(r.ResponseTimeMs, 10),
			r.MethodUsed,
			string(urlchecker.Classify(r)),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.OriginalURL, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Report is the JSON export shape: the summary up front, then every result.
type Report struct {
	Summary urlchecker.Summary        `json:"summary"`
	Results []urlchecker.StatusResult `json:"results"`
}

// WriteJSON renders results as an indented JSON report.
func WriteJSON(w io.Writer, results []urlchecker.StatusResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Report{Summary: urlchecker.Summarize(results), Results: results})
}
