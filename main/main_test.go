package main

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/zeebo/blake3"

	"github.com/ryogrid/SamehadaBlockIO/storage/disk"
	"github.com/ryogrid/SamehadaBlockIO/storage/page"
	testingpkg "github.com/ryogrid/SamehadaBlockIO/testing/testing_assert"
)

// runCLI parses args as the blockio command line and runs the selected command
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	parser, err := kong.New(&CLI, cliOptions()...)
	testingpkg.Ok(t, err)
	ctx, err := parser.Parse(args)
	testingpkg.Ok(t, err)

	var out bytes.Buffer
	savedStdout := stdout
	stdout = &out
	defer func() { stdout = savedStdout }()
	err = ctx.Run()
	return out.String(), err
}

func TestCLIAppendAndLength(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	out, err := runCLI(t, "-d", dir, "-b", "64", "append", "f")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "0\n", out)
	out, err = runCLI(t, "-d", dir, "-b", "64", "append", "f")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "1\n", out)

	out, err = runCLI(t, "-d", dir, "-b", "64", "length", "f")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "2\n", out)
	out, err = runCLI(t, "-d", dir, "-b", "64", "length", "nofile")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "0\n", out)
}

func TestCLIPutAndGetStr(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	_, err := runCLI(t, "-d", dir, "-b", "64", "append", "f")
	testingpkg.Ok(t, err)
	_, err = runCLI(t, "-d", dir, "-b", "64", "put-str", "f", "0", "hello", "日本語")
	testingpkg.Ok(t, err)

	out, err := runCLI(t, "-d", dir, "-b", "64", "get-str", "f", "0", "2")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "hello\n日本語\n", out)

	// count defaults to one
	out, err = runCLI(t, "-d", dir, "-b", "64", "get-str", "f", "0")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "hello\n", out)

	// the rest of the block is zero, which decodes as empty strings
	out, err = runCLI(t, "-d", dir, "-b", "64", "get-str", "f", "0", "3")
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "hello\n日本語\n\n", out)
}

func TestCLIDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	_, err := runCLI(t, "-d", dir, "-b", "32", "append", "f")
	testingpkg.Ok(t, err)
	_, err = runCLI(t, "-d", dir, "-b", "32", "put-str", "f", "0", "abc")
	testingpkg.Ok(t, err)

	out, err := runCLI(t, "-d", dir, "-b", "32", "dump", "f", "0")
	testingpkg.Ok(t, err)

	expected := page.New(32)
	expected.WriteStr("abc")
	expected.WriteBytes(make([]byte, 32-expected.Len()))
	digest := blake3.Sum256(expected.Contents())
	lines := strings.SplitN(out, "\n", 2)
	testingpkg.Equals(t, "[file f, block 0] blake3="+hex.EncodeToString(digest[:]), lines[0])
	testingpkg.Assert(t, strings.Contains(lines[1], "61 62 63"), "dump lacks string bytes: %q", lines[1])
}

func TestCLIErrors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	_, err := runCLI(t, "-d", dir, "-b", "16", "get-str", "nofile", "0")
	testingpkg.Nok(t, err, disk.ErrFileNotFound)
	_, err = runCLI(t, "-d", dir, "-b", "16", "dump", "nofile", "0")
	testingpkg.Nok(t, err, disk.ErrFileNotFound)

	_, err = runCLI(t, "-d", dir, "-b", "16", "append", "f")
	testingpkg.Ok(t, err)
	_, err = runCLI(t, "-d", dir, "-b", "16", "dump", "f", "1")
	testingpkg.Nok(t, err, disk.ErrShortBlock)
	// 4 byte length + 13 bytes does not fit in 16 byte block
	_, err = runCLI(t, "-d", dir, "-b", "16", "put-str", "f", "0", "abcdefghijklm")
	testingpkg.Nok(t, err, disk.ErrBlockOverflow)

	_, err = runCLI(t, "-d", dir, "-b", "0", "length", "f")
	testingpkg.Nok(t, err, disk.ErrInvalidBlockSize)
}
