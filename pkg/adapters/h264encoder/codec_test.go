package h264encoder

import (
	"fmt"
	"sync"
	"testing"
)

func TestStderrTail_SafeWhileProcessWrites(t *testing.T) {
	// exec.Cmd copies stderr from its own goroutine; stderrTail must be
	// readable mid-stream without racing those writes.
	c := &ffmpegCodec{}
	w := &lockedBuffer{mu: &c.errMu, buf: &c.stderr}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			fmt.Fprintf(w, "frame=%d\n", i)
		}
	}()
	for i := 0; i < 1000; i++ {
		c.stderrTail()
	}
	wg.Wait()

	if got := c.stderrTail(); got != "frame=999" {
		t.Errorf("unexpected tail %q", got)
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single line", in: "broken pipe", want: "broken pipe"},
		{name: "trailing newline", in: "frame=1\nframe=2\n", want: "frame=2"},
		{name: "padded", in: "a\n  error here  \n", want: "error here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastLine([]byte(tt.in)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
