package bytecode

import (
	"bytes"
	"testing"

	"github.com/sable-lang/sable/pkg/value"
)

func buildTestChunk() *Chunk {
	c := NewChunk()
	c.WriteConstant(value.NewI32(42), 1, 1)
	c.WriteConstant(value.NewString("answer"), 1, 9)
	c.WriteOp(OpAdd, 2, 1)
	c.WriteOp(OpReturn, 2, 1)
	return c
}

func TestImageRoundTrip(t *testing.T) {
	src := buildTestChunk()

	data, err := src.MarshalImage()
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}

	got, err := UnmarshalImage(data)
	if err != nil {
		t.Fatalf("UnmarshalImage: %v", err)
	}

	if !bytes.Equal(got.Code, src.Code) {
		t.Errorf("Code mismatch: got %v, want %v", got.Code, src.Code)
	}
	if len(got.Constants) != len(src.Constants) {
		t.Fatalf("constant count = %d, want %d", len(got.Constants), len(src.Constants))
	}
	for i := range src.Constants {
		if !got.Constants[i].Equals(src.Constants[i]) {
			t.Errorf("constant %d = %s, want %s", i, got.Constants[i], src.Constants[i])
		}
	}
	if got.Line(2) != src.Line(2) || got.Column(2) != src.Column(2) {
		t.Error("position table did not survive the round trip")
	}
}

func TestImageMagic(t *testing.T) {
	data, err := buildTestChunk().MarshalImage()
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	if string(data[:4]) != string(ImageMagic) {
		t.Errorf("magic = %q, want %q", data[:4], ImageMagic)
	}
}

func TestUnmarshalImageRejectsBadMagic(t *testing.T) {
	data, _ := buildTestChunk().MarshalImage()
	data[0] = 'X'

	if _, err := UnmarshalImage(data); err == nil {
		t.Error("expected an error for a corrupted magic")
	}
}

func TestUnmarshalImageRejectsBadVersion(t *testing.T) {
	data, _ := buildTestChunk().MarshalImage()
	data[4] = 0xFF
	data[5] = 0xFF

	if _, err := UnmarshalImage(data); err == nil {
		t.Error("expected an error for an unsupported version")
	}
}

func TestUnmarshalImageRejectsTruncatedInput(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("SB"), []byte("SBLC\x00")} {
		if _, err := UnmarshalImage(data); err == nil {
			t.Errorf("expected an error for %d-byte input", len(data))
		}
	}
}

func TestImageRoundTripEmptyChunk(t *testing.T) {
	data, err := NewChunk().MarshalImage()
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	got, err := UnmarshalImage(data)
	if err != nil {
		t.Fatalf("UnmarshalImage: %v", err)
	}
	if got.Len() != 0 || got.ConstantCount() != 0 {
		t.Errorf("empty chunk round trip: Len=%d Constants=%d", got.Len(), got.ConstantCount())
	}
}
