package types

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// BlockNum is the zero-based position of a block within its file
type BlockNum uint32

// BlockID names a fixed-size block by file name and block number.
// It is a name only: no file handle or buffer is attached to it.
// BlockID is comparable, so it can be used as a map key directly.
type BlockID struct {
	fileName string
	number   BlockNum
}

// NewBlockID never fails. fileName is kept verbatim and resolved relative to
// the storage root by the file manager.
func NewBlockID(fileName string, number BlockNum) BlockID {
	return BlockID{fileName, number}
}

func (b BlockID) FileName() string {
	return b.fileName
}

func (b BlockID) Number() BlockNum {
	return b.number
}

func (b BlockID) Equals(other BlockID) bool {
	return b == other
}

// Offset returns the byte offset of the block in its file
func (b BlockID) Offset(blockSize int) int64 {
	return int64(blockSize) * int64(b.number)
}

// Hash is murmur3 over the file name followed by the big-endian block number
func (b BlockID) Hash() uint32 {
	buf := make([]byte, len(b.fileName)+4)
	copy(buf, b.fileName)
	binary.BigEndian.PutUint32(buf[len(b.fileName):], uint32(b.number))
	return murmur3.Sum32(buf)
}

func (b BlockID) String() string {
	return fmt.Sprintf("[file %s, block %d]", b.fileName, b.number)
}
