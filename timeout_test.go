package tidy_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cybergodev/tidy"
)

func TestProcessingTimeout(t *testing.T) {
	t.Parallel()

	// Create a large nested document that takes time to tidy
	var sb strings.Builder
	depth := 400
	for i := 0; i < depth; i++ {
		sb.WriteString("<div><p>Some paragraph text")
	}
	for i := 0; i < depth; i++ {
		sb.WriteString("</div>")
	}

	c := tidy.DefaultConfig()
	c.MaxDepth = 512
	c.ProcessingTimeout = 1 * time.Nanosecond // Extremely short timeout
	p, err := tidy.New(c)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer p.Close()

	_, err = p.Tidy(sb.String(), tidy.Options{"indent": "auto"})
	if !errors.Is(err, tidy.ErrProcessingTimeout) {
		t.Errorf("Expected ErrProcessingTimeout, got: %v", err)
	}
	if got := p.GetStatistics().TimeoutCount; got != 1 {
		t.Errorf("TimeoutCount = %d, want 1", got)
	}
}

func TestProcessingWithoutTimeout(t *testing.T) {
	t.Parallel()

	c := tidy.DefaultConfig()
	c.ProcessingTimeout = 0
	p, err := tidy.New(c)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer p.Close()

	res, err := p.Tidy("<title>t</title><p>No timeout", nil)
	if err != nil {
		t.Fatalf("Tidy() failed: %v", err)
	}
	if !strings.Contains(res.Output, "<p>No timeout</p>") {
		t.Errorf("Output = %q", res.Output)
	}
}
