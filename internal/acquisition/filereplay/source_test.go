package filereplay

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRecording(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.csv")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("could not write test recording: %v", err)
	}
	return path
}

func TestReadRecording(t *testing.T) {
	path := writeRecording(t, "timestamp,value\n1000,0.5\n1010,1.5\n1020,-0.25\n")

	samples, err := ReadRecording(path)
	if err != nil {
		t.Fatalf("ReadRecording returned error: %v", err)
	}

	want := []float64{0.5, 1.5, -0.25}
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], samples[i])
		}
	}
}

func TestReadRecordingValueColumnPosition(t *testing.T) {
	// The value column can be anywhere in the header
	path := writeRecording(t, "value,timestamp\n2.5,1000\n3.5,1010\n")

	samples, err := ReadRecording(path)
	if err != nil {
		t.Fatalf("ReadRecording returned error: %v", err)
	}
	if len(samples) != 2 || samples[0] != 2.5 || samples[1] != 3.5 {
		t.Errorf("unexpected samples: %v", samples)
	}
}

func TestReadRecordingNoValueColumn(t *testing.T) {
	path := writeRecording(t, "timestamp,amplitude\n1000,0.5\n")
	if _, err := ReadRecording(path); err == nil {
		t.Error("expected error for missing value column")
	}
}

func TestReadRecordingBadValue(t *testing.T) {
	path := writeRecording(t, "timestamp,value\n1000,not-a-number\n")
	if _, err := ReadRecording(path); err == nil {
		t.Error("expected error for unparsable amplitude")
	}
}

func TestReadRecordingEmpty(t *testing.T) {
	path := writeRecording(t, "timestamp,value\n")
	if _, err := ReadRecording(path); err == nil {
		t.Error("expected error for recording with no samples")
	}
}

func TestReadRecordingMissingFile(t *testing.T) {
	if _, err := ReadRecording(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
