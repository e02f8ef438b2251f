package responseformat

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type testPayload struct {
	Name  string    `json:"name"`
	Value []float64 `json:"value"`
}

func TestWriteResponseJSONDefault(t *testing.T) {
	f := NewFormatter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/latest/eeg-1", nil)

	payload := testPayload{Name: "eeg-1", Value: []float64{1, 2, 3}}
	if err := f.WriteResponse(w, req, payload, map[string]string{"X-Run": "abc"}); err != nil {
		t.Fatalf("WriteResponse returned error: %v", err)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	if w.Header().Get("X-Run") != "abc" {
		t.Error("custom header was not set")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header was not set")
	}

	var decoded testPayload
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if decoded.Name != "eeg-1" || len(decoded.Value) != 3 {
		t.Errorf("unexpected decoded payload: %+v", decoded)
	}
}

func TestWriteResponseMsgPack(t *testing.T) {
	f := NewFormatter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/latest/eeg-1?format=msgpack", nil)

	payload := testPayload{Name: "eeg-1", Value: []float64{0.5}}
	if err := f.WriteResponse(w, req, payload, nil); err != nil {
		t.Fatalf("WriteResponse returned error: %v", err)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("expected MessagePack content type, got %q", ct)
	}

	// Encoded with json struct tags, so decoding with them must roundtrip
	dec := msgpack.NewDecoder(w.Body)
	dec.SetCustomStructTag("json")
	var decoded testPayload
	if err := dec.Decode(&decoded); err != nil {
		t.Fatalf("response is not valid MessagePack: %v", err)
	}
	if decoded.Name != "eeg-1" || len(decoded.Value) != 1 || decoded.Value[0] != 0.5 {
		t.Errorf("unexpected decoded payload: %+v", decoded)
	}
}
