package main

import (
	"bytes"
	"testing"

	"github.com/vnykmshr/framepipe/pkg/encoding/gif"
)

// blockingReporter blocks every frame until gate is closed.
func blockingReporter(gate <-chan struct{}) gif.ProgressReporter {
	return gif.ProgressFunc(func() bool {
		<-gate
		return true
	})
}

func TestProgressReporterWithoutTerminal(t *testing.T) {
	reporter, finish := newProgressReporter(&bytes.Buffer{}, 10)
	defer finish()
	if _, ok := reporter.(gif.NoopReporter); !ok {
		t.Fatalf("expected NoopReporter for a non-terminal writer, got %T", reporter)
	}
}
