// signal-simulator generates synthetic EEG or ECG sample streams and feeds
// them to a running daemon, for development without acquisition hardware.
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type samplePayload struct {
	Samples []float64 `json:"samples" msgpack:"samples"`
}

func main() {
	var (
		target   = flag.String("target", "http://localhost:8090/data", "HTTP ingest URL, or host:port when -transport=tcp")
		trans    = flag.String("transport", "http", "Transport: 'http' (JSON POST) or 'tcp' (length-prefixed MessagePack)")
		signal   = flag.String("signal", "ecg", "Signal type to synthesize: 'eeg' or 'ecg'")
		rate     = flag.Float64("rate", 100, "Sampling rate in Hz")
		bpm      = flag.Float64("bpm", 60, "Heart rate for synthetic ECG")
		noise    = flag.Float64("noise", 0.05, "Additive noise amplitude")
		interval = flag.Duration("interval", time.Second, "Delay between batches")
		count    = flag.Int("count", 0, "Number of batches to send (0 = run forever)")
		seed     = flag.Int64("seed", 0, "Random seed (0 = time-based)")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var gen func(n int, phase float64) ([]float64, float64)
	switch *signal {
	case "eeg":
		gen = func(n int, phase float64) ([]float64, float64) {
			return synthesizeEEG(rng, n, *rate, *noise, phase)
		}
	case "ecg":
		gen = func(n int, phase float64) ([]float64, float64) {
			return synthesizeECG(rng, n, *rate, *bpm, *noise, phase)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown signal type %q\n", *signal)
		os.Exit(1)
	}

	batchSize := int(*rate)
	phase := 0.0
	sent := 0
	for {
		var samples []float64
		samples, phase = gen(batchSize, phase)

		var err error
		switch *trans {
		case "http":
			err = sendHTTP(*target, samples)
		case "tcp":
			err = sendTCP(*target, samples)
		default:
			fmt.Fprintf(os.Stderr, "Unknown transport %q\n", *trans)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		} else {
			fmt.Printf("sent batch of %d %s samples\n", len(samples), *signal)
		}

		sent++
		if *count > 0 && sent >= *count {
			return
		}
		time.Sleep(*interval)
	}
}

// synthesizeEEG produces an alpha-dominant trace: a 10 Hz rhythm with a
// weaker 22 Hz beta component and noise. The phase carries across batches
// so the stream is continuous.
func synthesizeEEG(rng *rand.Rand, n int, rate, noise, phase float64) ([]float64, float64) {
	samples := make([]float64, n)
	for i := range samples {
		t := phase + float64(i)/rate
		samples[i] = math.Sin(2*math.Pi*10*t) +
			0.3*math.Sin(2*math.Pi*22*t) +
			noise*rng.NormFloat64()
	}
	return samples, phase + float64(n)/rate
}

// synthesizeECG produces a Gaussian QRS pulse train at the requested heart
// rate with slight beat-to-beat jitter.
func synthesizeECG(rng *rand.Rand, n int, rate, bpm, noise, phase float64) ([]float64, float64) {
	period := 60.0 / bpm
	width := 0.025 * period

	samples := make([]float64, n)
	for i := range samples {
		t := phase + float64(i)/rate
		// distance to the nearest beat center
		beat := math.Round(t/period) * period
		d := t - beat
		samples[i] = math.Exp(-d*d/(2*width*width)) + noise*rng.NormFloat64()
	}
	return samples, phase + float64(n)/rate
}

func sendHTTP(url string, samples []float64) error {
	body, err := json.Marshal(samplePayload{Samples: samples})
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func sendTCP(addr string, samples []float64) error {
	payload, err := msgpack.Marshal(samplePayload{Samples: samples})
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	if _, err := conn.Write(header); err != nil {
		return err
	}
	_, err = conn.Write(payload)
	return err
}
