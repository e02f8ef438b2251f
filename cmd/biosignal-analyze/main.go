// biosignal-analyze runs the analysis pipeline over a recorded CSV capture
// and prints a feature report, without needing the daemon or a database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/acquisition/filereplay"
	"github.com/EduLodi/trab-final-instrmed/internal/analysis"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
)

func main() {
	var (
		file       = flag.String("file", "", "Path to a CSV recording with a 'value' column")
		signal     = flag.String("signal", "eeg", "Signal type: 'eeg' or 'ecg'")
		rate       = flag.Float64("rate", 100, "Sampling rate of the recording in Hz")
		segment    = flag.Float64("welch-segment", 4, "Welch segment length in seconds (EEG only)")
		jsonOutput = flag.Bool("json", false, "Print the full result as JSON instead of a report")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := log.Init(*debug, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	signalType, err := types.ParseSignalType(*signal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	samples, err := filereplay.ReadRecording(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := analysis.DefaultConfig()
	cfg.WelchSegmentSec = *segment
	analyzer := analysis.New(cfg, log.GetSugaredLogger())

	batch := types.SampleBatch{
		SourceName:   *file,
		SignalType:   signalType,
		SampleRateHz: *rate,
		Samples:      samples,
		ReceivedAt:   time.Now(),
	}

	result, err := analyzer.Run(context.Background(), batch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(result)
}

func printReport(r *analysis.Result) {
	fmt.Printf("Biosignal Analysis Report\n")
	fmt.Printf("=========================\n\n")
	fmt.Printf("Run:           %s\n", r.RunID)
	fmt.Printf("Source:        %s\n", r.SourceName)
	fmt.Printf("Signal type:   %s\n", r.SignalType)
	fmt.Printf("Samples:       %d (%.1f s at %.1f Hz)\n\n",
		r.SampleCount, float64(r.SampleCount)/r.SampleRateHz, r.SampleRateHz)

	if r.EEG != nil {
		fmt.Printf("Dominant frequency: %.2f Hz", r.EEG.DominantFreqHz)
		if r.EEG.AlphaDominant {
			fmt.Printf(" (alpha band)")
		}
		fmt.Println()
		if r.EEG.Degraded {
			fmt.Printf("NOTE: recording shorter than one Welch segment; spectral resolution is degraded\n")
		}
		fmt.Printf("\nBand powers:\n")
		names := make([]string, 0, len(r.EEG.BandPowers))
		for name := range r.EEG.BandPowers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-6s %12.6g\n", name, r.EEG.BandPowers[name])
		}
	}

	if r.ECG != nil {
		if r.ECG.InsufficientData {
			fmt.Printf("Insufficient data: only %d QRS peaks detected\n", r.ECG.PeakCount)
			return
		}
		fmt.Printf("QRS peaks:     %d\n", r.ECG.PeakCount)
		fmt.Printf("Mean HR:       %.1f bpm\n", r.ECG.MeanHR)
		fmt.Printf("HR range:      %.1f - %.1f bpm\n", r.ECG.MinHR, r.ECG.MaxHR)
		fmt.Printf("SDNN:          %.1f ms\n", r.ECG.SDNNMilliseconds)
	}
}
