package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 4)

	p.Increment()
	p.Increment()
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "2/4") {
		t.Errorf("expected intermediate progress in output: %q", out)
	}
	if !strings.Contains(out, "4/4") {
		t.Errorf("expected completion in output: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("expected Finish to terminate the line: %q", out)
	}
}

func TestProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 0)

	p.Increment()
	p.Finish()

	// Nothing to render without a total.
	if buf.Len() != 0 {
		t.Errorf("expected no progress output, got %q", buf.String())
	}
}

func TestProgress_ConcurrentIncrements(t *testing.T) {
	// All rendering happens under the bar's mutex, so a plain buffer is
	// safe even with concurrent increments.
	var buf bytes.Buffer
	p := NewProgress(&buf, 50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()
	p.Finish()

	if !strings.Contains(buf.String(), "50/50") {
		t.Errorf("expected full completion in output: %q", buf.String())
	}
}

func TestNewProgress_NilWriter(t *testing.T) {
	if NewProgress(nil, 0) == nil {
		t.Fatal("expected a bar for a nil writer")
	}
}
