package types

import (
	"testing"

	testingpkg "github.com/ryogrid/SamehadaBlockIO/testing/testing_assert"
)

func TestNewBlockID(t *testing.T) {
	blk := NewBlockID("testfile", 123)

	testingpkg.Equals(t, "testfile", blk.FileName())
	testingpkg.Equals(t, BlockNum(123), blk.Number())
	testingpkg.Equals(t, "[file testfile, block 123]", blk.String())
}

func TestBlockIDEquality(t *testing.T) {
	a := NewBlockID("f", 1)
	b := NewBlockID("f", 1)
	c := NewBlockID("f", 2)
	d := NewBlockID("g", 1)

	testingpkg.SimpleAssert(t, a == b)
	testingpkg.SimpleAssert(t, a.Equals(b))
	testingpkg.SimpleAssert(t, !a.Equals(c))
	testingpkg.SimpleAssert(t, !a.Equals(d))
	testingpkg.Equals(t, a.Hash(), b.Hash())

	// structural map key
	pinned := map[BlockID]int{a: 1}
	pinned[b]++
	testingpkg.Equals(t, 2, pinned[NewBlockID("f", 1)])
	testingpkg.Equals(t, 1, len(pinned))
}

func TestBlockIDHashSeparatesNameAndNumber(t *testing.T) {
	testingpkg.Assert(t, NewBlockID("f", 1).Hash() != NewBlockID("f", 2).Hash(), "hash ignores block number")
	testingpkg.Assert(t, NewBlockID("f", 1).Hash() != NewBlockID("g", 1).Hash(), "hash ignores file name")
}

func TestBlockIDOffset(t *testing.T) {
	testingpkg.Equals(t, int64(0), NewBlockID("f", 0).Offset(400))
	testingpkg.Equals(t, int64(1200), NewBlockID("f", 3).Offset(400))
	// must not overflow 32bit arithmetic
	testingpkg.Equals(t, int64(4096)*int64(^BlockNum(0)), NewBlockID("f", ^BlockNum(0)).Offset(4096))
}
