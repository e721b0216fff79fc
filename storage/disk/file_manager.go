package disk

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ryogrid/SamehadaBlockIO/errors"
	"github.com/ryogrid/SamehadaBlockIO/storage/page"
	"github.com/ryogrid/SamehadaBlockIO/types"
)

const (
	ErrFileNotFound     = errors.Error("target file does not exist")
	ErrShortBlock       = errors.Error("fewer bytes than block size are available")
	ErrBlockOverflow    = errors.Error("page content is larger than block size")
	ErrInvalidFileName  = errors.Error("file name is not a local path under db directory")
	ErrInvalidBlockSize = errors.Error("block size must be positive")
	ErrIO               = errors.Error("I/O error")
)

/**
 * FileManager is the only component which touches block files under the db directory.
 * Every file is a flat sequence of blocks of BlockSize bytes, block k occupying
 * [k*BlockSize, (k+1)*BlockSize).
 *
 * Read, Write, Append and Length of one FileManager are mutually exclusive: at most one
 * physical transfer is in flight at any instant, whatever file or block it targets.
 * No file handle and no Page is retained between calls.
 */
type FileManager interface {
	// Read fills p with the content of block. Cursor of p is left at the end, so Flip it before reading fields.
	Read(block types.BlockID, p *page.Page) error
	// Write puts the content of p at block. The file must already exist.
	Write(block types.BlockID, p *page.Page) error
	// Append grows fileName by one block, creating the file if needed, and returns the new block.
	Append(fileName string) (types.BlockID, error)
	// Length returns the number of whole blocks in fileName. A missing file has zero blocks.
	Length(fileName string) (types.BlockNum, error)
	BlockSize() int
	// IsNew reports whether the db directory was created by this FileManager
	IsNew() bool
	GetNumReads() uint64
	GetNumWrites() uint64
	GetNumAppends() uint64
	ShutDown()
}

// resolvePath joins fileName to dbDir, refusing names which could leave dbDir
// or which name dbDir itself
func resolvePath(dbDir string, fileName string) (string, error) {
	if !filepath.IsLocal(fileName) || filepath.Clean(fileName) == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}
	return filepath.Join(dbDir, fileName), nil
}

func wrapOpenErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func blockNumFromSize(size int64, blockSize int) (types.BlockNum, error) {
	num := size / int64(blockSize)
	if num > int64(^types.BlockNum(0)) {
		return 0, fmt.Errorf("%w: block count %d overflows block number", ErrIO, num)
	}
	return types.BlockNum(num), nil
}

func validateBlockSize(blockSize int) error {
	if blockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	return nil
}
