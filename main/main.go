// Command blockio inspects and edits block files managed by a FileManager.
// It is handy for looking into a db directory while developing upper layers.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/zeebo/blake3"

	"github.com/ryogrid/SamehadaBlockIO/common"
	"github.com/ryogrid/SamehadaBlockIO/storage/disk"
	"github.com/ryogrid/SamehadaBlockIO/storage/page"
	"github.com/ryogrid/SamehadaBlockIO/types"
)

// stdout receives command results
var stdout io.Writer = os.Stdout

var CLI struct {
	Dir       string `name:"dir" short:"d" help:"Directory holding block files" type:"path" default:"."`
	BlockSize int    `name:"block-size" short:"b" help:"Block size in bytes. Must match the one used to create the files" default:"${block_size}"`
	Debug     bool   `name:"debug" help:"Use deadlock detecting lock and print transfer traces"`

	Append AppendCmd `cmd:"" help:"Append one block to a file and print its number"`
	Length LengthCmd `cmd:"" help:"Print the number of blocks of a file"`
	Dump   DumpCmd   `cmd:"" help:"Hex dump a block with its BLAKE3 digest"`
	PutStr PutStrCmd `cmd:"" name:"put-str" help:"Encode strings into a block"`
	GetStr GetStrCmd `cmd:"" name:"get-str" help:"Decode strings from a block"`
}

func openFileManager() (disk.FileManager, error) {
	if CLI.Debug {
		common.EnableDebug = true
		common.LogLevelSetting |= common.DEBUG_INFO | common.DEBUG_INFO_DETAIL
	}
	return disk.NewFileManagerImpl(CLI.Dir, CLI.BlockSize)
}

type AppendCmd struct {
	File string `arg:"" help:"File name relative to the directory"`
}

func (c *AppendCmd) Run() error {
	fm, err := openFileManager()
	if err != nil {
		return err
	}
	defer fm.ShutDown()

	blk, err := fm.Append(c.File)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, blk.Number())
	return nil
}

type LengthCmd struct {
	File string `arg:"" help:"File name relative to the directory"`
}

func (c *LengthCmd) Run() error {
	fm, err := openFileManager()
	if err != nil {
		return err
	}
	defer fm.ShutDown()

	n, err := fm.Length(c.File)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, n)
	return nil
}

type DumpCmd struct {
	File  string `arg:"" help:"File name relative to the directory"`
	Block uint32 `arg:"" help:"Block number"`
}

func (c *DumpCmd) Run() error {
	fm, err := openFileManager()
	if err != nil {
		return err
	}
	defer fm.ShutDown()

	blk := types.NewBlockID(c.File, types.BlockNum(c.Block))
	p := page.New(fm.BlockSize())
	if err = fm.Read(blk, p); err != nil {
		return err
	}
	digest := blake3.Sum256(p.Contents())
	fmt.Fprintf(stdout, "%v blake3=%s\n", blk, hex.EncodeToString(digest[:]))
	fmt.Fprint(stdout, hex.Dump(p.Contents()))
	return nil
}

type PutStrCmd struct {
	File    string   `arg:"" help:"File name relative to the directory"`
	Block   uint32   `arg:"" help:"Block number. The block must already exist"`
	Strings []string `arg:"" help:"Strings written from the head of the block"`
}

func (c *PutStrCmd) Run() error {
	fm, err := openFileManager()
	if err != nil {
		return err
	}
	defer fm.ShutDown()

	blk := types.NewBlockID(c.File, types.BlockNum(c.Block))
	// patch the current content so bytes after the strings are kept
	p := page.New(fm.BlockSize())
	if err = fm.Read(blk, p); err != nil {
		return err
	}
	p.Flip()
	for _, s := range c.Strings {
		p.WriteStr(s)
	}
	if err = fm.Write(blk, p); err != nil {
		return err
	}
	common.ShPrintf(common.INFO, "wrote %d strings to %v\n", len(c.Strings), blk)
	return nil
}

type GetStrCmd struct {
	File  string `arg:"" help:"File name relative to the directory"`
	Block uint32 `arg:"" help:"Block number"`
	Count int    `arg:"" optional:"" help:"Number of strings to decode" default:"1"`
}

func (c *GetStrCmd) Run() error {
	fm, err := openFileManager()
	if err != nil {
		return err
	}
	defer fm.ShutDown()

	blk := types.NewBlockID(c.File, types.BlockNum(c.Block))
	p := page.New(fm.BlockSize())
	if err = fm.Read(blk, p); err != nil {
		return err
	}
	p.Flip()
	for i := 0; i < c.Count; i++ {
		s, err := p.ReadStr()
		if err != nil {
			return fmt.Errorf("string %d of %v: %w", i, blk, err)
		}
		fmt.Fprintln(stdout, s)
	}
	return nil
}

func cliOptions() []kong.Option {
	return []kong.Option{
		kong.Name("blockio"),
		kong.Description("Inspect block files of a db directory"),
		kong.UsageOnError(),
		kong.Vars{"block_size": strconv.Itoa(common.DefaultBlockSize)},
	}
}

func main() {
	ctx := kong.Parse(&CLI, cliOptions()...)
	if err := ctx.Run(); err != nil {
		common.ShPrintf(common.ERROR, "%v\n", err)
		os.Exit(1)
	}
}
