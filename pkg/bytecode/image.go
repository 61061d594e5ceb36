package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/sable-lang/sable/pkg/value"
)

// ImageVersion is the current chunk image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic identifies serialized chunk images: "SBLC" (Sable ByteCode).
var ImageMagic = []byte{'S', 'B', 'L', 'C'}

// cborEncMode uses canonical options so identical chunks always serialize
// to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// chunkImage is the serialized form of a Chunk.
type chunkImage struct {
	Code      []byte        `cbor:"c"`
	Constants []value.Value `cbor:"k,omitempty"`
	Positions []PositionRun `cbor:"p,omitempty"`
}

// MarshalImage serializes the chunk to bytes for storage or transport.
// Layout: [magic:4] [version:2 big-endian] [CBOR payload].
func (c *Chunk) MarshalImage() ([]byte, error) {
	payload, err := cborEncMode.Marshal(chunkImage{
		Code:      c.Code,
		Constants: c.Constants,
		Positions: c.Positions,
	})
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal chunk image: %w", err)
	}

	buf := make([]byte, 0, len(ImageMagic)+2+len(payload))
	buf = append(buf, ImageMagic...)
	buf = binary.BigEndian.AppendUint16(buf, ImageVersion)
	buf = append(buf, payload...)
	return buf, nil
}

// UnmarshalImage deserializes a chunk image produced by MarshalImage.
func UnmarshalImage(data []byte) (*Chunk, error) {
	header := len(ImageMagic) + 2
	if len(data) < header {
		return nil, fmt.Errorf("bytecode: image too short: need at least %d bytes, got %d", header, len(data))
	}
	if string(data[:4]) != string(ImageMagic) {
		return nil, fmt.Errorf("bytecode: invalid image magic: expected %q, got %q", ImageMagic, data[:4])
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version > ImageVersion {
		return nil, fmt.Errorf("bytecode: image version %d is newer than supported version %d", version, ImageVersion)
	}

	var img chunkImage
	if err := cbor.Unmarshal(data[header:], &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk image: %w", err)
	}

	c := &Chunk{
		Code:      img.Code,
		Constants: img.Constants,
		Positions: img.Positions,
	}
	if c.Code == nil {
		c.Code = []byte{}
	}
	if c.Constants == nil {
		c.Constants = []value.Value{}
	}
	return c, nil
}
