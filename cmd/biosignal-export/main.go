// biosignal-export dumps stored analysis runs to CSV for offline review in
// spreadsheet or plotting tools.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// exportRow mirrors the scalar columns of analysis_runs; the JSONB payload
// columns are omitted from the CSV.
type exportRow struct {
	RunID            string
	CompletedAt      time.Time
	SourceName       string
	SignalType       string
	SampleCount      int
	SampleRateHz     float64
	DominantFreqHz   float64
	AlphaDominant    bool
	Degraded         bool
	PeakCount        int
	MeanHR           float64
	MinHR            float64
	MaxHR            float64
	SDNNMilliseconds float64
	InsufficientData bool
}

func main() {
	var (
		dbHost    = flag.String("db-host", "localhost", "Database host")
		dbPort    = flag.Int("db-port", 5432, "Database port")
		dbUser    = flag.String("db-user", "postgres", "Database user")
		dbPass    = flag.String("db-pass", "", "Database password")
		dbName    = flag.String("db-name", "biosignal", "Database name")
		source    = flag.String("source", "", "Only export runs from this source (default: all)")
		hours     = flag.Int("hours", 24, "Number of hours of runs to export")
		csvOutput = flag.String("csv", "analysis_runs.csv", "CSV output file path")
	)
	flag.Parse()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Error pinging database: %v\n", err)
		os.Exit(1)
	}

	rows, err := fetchRuns(db, *source, *hours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying runs: %v\n", err)
		os.Exit(1)
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No runs found for the requested window")
		os.Exit(1)
	}

	if err := writeCSV(*csvOutput, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d runs to %s\n", len(rows), *csvOutput)
}

func fetchRuns(db *sql.DB, source string, hours int) ([]exportRow, error) {
	query := `
		SELECT
			run_id, completed_at, source_name, signal_type, sample_count, sample_rate_hz,
			dominant_freq_hz, alpha_dominant, degraded,
			peak_count, mean_hr, min_hr, max_hr, sdnn_ms, insufficient_data
		FROM analysis_runs
		WHERE completed_at >= NOW() - INTERVAL '1 hour' * $1
		  AND ($2 = '' OR source_name = $2)
		ORDER BY completed_at
	`

	rows, err := db.Query(query, hours, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []exportRow
	for rows.Next() {
		var r exportRow
		if err := rows.Scan(
			&r.RunID, &r.CompletedAt, &r.SourceName, &r.SignalType, &r.SampleCount, &r.SampleRateHz,
			&r.DominantFreqHz, &r.AlphaDominant, &r.Degraded,
			&r.PeakCount, &r.MeanHR, &r.MinHR, &r.MaxHR, &r.SDNNMilliseconds, &r.InsufficientData,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func writeCSV(filename string, runs []exportRow) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"run_id", "completed_at", "source_name", "signal_type", "sample_count", "sample_rate_hz",
		"dominant_freq_hz", "alpha_dominant", "degraded",
		"peak_count", "mean_hr", "min_hr", "max_hr", "sdnn_ms", "insufficient_data",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range runs {
		record := []string{
			r.RunID,
			r.CompletedAt.Format(time.RFC3339),
			r.SourceName,
			r.SignalType,
			fmt.Sprintf("%d", r.SampleCount),
			fmt.Sprintf("%.2f", r.SampleRateHz),
			fmt.Sprintf("%.4f", r.DominantFreqHz),
			fmt.Sprintf("%t", r.AlphaDominant),
			fmt.Sprintf("%t", r.Degraded),
			fmt.Sprintf("%d", r.PeakCount),
			fmt.Sprintf("%.2f", r.MeanHR),
			fmt.Sprintf("%.2f", r.MinHR),
			fmt.Sprintf("%.2f", r.MaxHR),
			fmt.Sprintf("%.2f", r.SDNNMilliseconds),
			fmt.Sprintf("%t", r.InsufficientData),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
