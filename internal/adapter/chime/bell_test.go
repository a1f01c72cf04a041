package chime

import (
	"bytes"
	"testing"
)

func TestBellWritesBel(t *testing.T) {
	var buf bytes.Buffer
	b := &Bell{W: &buf}
	if err := b.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if got := buf.Bytes(); len(got) != 1 || got[0] != 0x07 {
		t.Errorf("wrote %v, want BEL", got)
	}
}
