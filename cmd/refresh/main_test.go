package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lysyi3m/curator/app/ingest"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("stdout closed")
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, &ingest.Result{Success: true, Count: 3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if got["success"] != true || got["count"] != float64(3) {
		t.Errorf("Unexpected result: %v", got)
	}
}

func TestWriteResultReportsWriteError(t *testing.T) {
	if err := writeResult(failingWriter{}, &ingest.Result{Success: true}); err == nil {
		t.Error("Expected write failure to be returned")
	}
}
