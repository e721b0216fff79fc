// this code is based on disk_manager_impl.go of https://github.com/brunocalza/go-bustub

package disk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/ncw/directio"
	"github.com/ryogrid/SamehadaBlockIO/common"
	"github.com/ryogrid/SamehadaBlockIO/errors"
	"github.com/ryogrid/SamehadaBlockIO/storage/page"
	"github.com/ryogrid/SamehadaBlockIO/types"
)

// FileManagerImpl is the os file implementation of FileManager
type FileManagerImpl struct {
	dbDir      string
	blockSize  int
	isNew      bool
	mutex      *common.ExclusionLock
	numReads   uint64
	numWrites  uint64
	numAppends uint64
}

// NewFileManagerImpl returns a FileManager storing blocks under dbDir.
// dbDir is created when it does not exist.
func NewFileManagerImpl(dbDir string, blockSize int) (FileManager, error) {
	if err := validateBlockSize(blockSize); err != nil {
		return nil, err
	}

	absDir, err := filepath.Abs(dbDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	isNew := false
	fileInfo, err := os.Stat(absDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(absDir, common.DBDirPerm); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		isNew = true
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	case !fileInfo.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIO, absDir)
	}

	common.ShPrintf(common.DEBUG_INFO, "NewFileManagerImpl: dir=%s blockSize=%d isNew=%v\n", absDir, blockSize, isNew)
	return &FileManagerImpl{
		dbDir:     absDir,
		blockSize: blockSize,
		isNew:     isNew,
		mutex:     common.NewExclusionLock(),
	}, nil
}

// Read a block from its file into p
func (d *FileManagerImpl) Read(block types.BlockID, p *page.Page) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	path, err := resolvePath(d.dbDir, block.FileName())
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		common.ShPrintf(common.WARN, "Read: open of %s failed: %v\n", path, err)
		return wrapOpenErr(path, err)
	}
	defer file.Close()

	offset := block.Offset(d.blockSize)
	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !fileInfo.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrIO, path)
	}
	if offset >= fileInfo.Size() {
		return fmt.Errorf("%w: %v starts at %d but file size is %d", ErrShortBlock, block, offset, fileInfo.Size())
	}

	buf := directio.AlignedBlock(d.blockSize)
	bytesRead, err := file.ReadAt(buf, offset)
	if bytesRead < d.blockSize {
		if err != nil && err != io.EOF {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		return fmt.Errorf("%w: %v has only %d bytes", ErrShortBlock, block, bytesRead)
	}

	p.SetContents(buf)
	atomic.AddUint64(&d.numReads, 1)
	common.ShPrintf(common.DEBUG_INFO, "Read: %v\n", block)
	return nil
}

// Write the content of p to a block of an existing file
func (d *FileManagerImpl) Write(block types.BlockID, p *page.Page) (err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if p.Len() > d.blockSize {
		return fmt.Errorf("%w: %d > %d", ErrBlockOverflow, p.Len(), d.blockSize)
	}
	path, err := resolvePath(d.dbDir, block.FileName())
	if err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		common.ShPrintf(common.WARN, "Write: open of %s failed: %v\n", path, err)
		return wrapOpenErr(path, err)
	}
	defer func() {
		if errClose := file.Close(); errClose != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, errClose)
		}
	}()

	bytesWritten, err := file.WriteAt(p.Contents(), block.Offset(d.blockSize))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if bytesWritten != p.Len() {
		return fmt.Errorf("%w: wrote %d of %d bytes to %v", ErrIO, bytesWritten, p.Len(), block)
	}

	atomic.AddUint64(&d.numWrites, 1)
	common.ShPrintf(common.DEBUG_INFO, "Write: %v\n", block)
	return nil
}

// Append extends fileName by one block.
// The new block number is derived from the current file size, a trailing partial block is not counted.
func (d *FileManagerImpl) Append(fileName string) (block types.BlockID, err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	path, err := resolvePath(d.dbDir, fileName)
	if err != nil {
		return types.BlockID{}, err
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, common.DBFilePerm)
	if err != nil {
		return types.BlockID{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if errClose := file.Close(); errClose != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, errClose)
		}
	}()

	fileInfo, err := file.Stat()
	if err != nil {
		return types.BlockID{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	size := fileInfo.Size()
	if size%int64(d.blockSize) != 0 {
		common.ShPrintf(common.WARN, "Append: size of %s (%d) is not aligned to block size %d\n", path, size, d.blockSize)
	}
	blockNum, err := blockNumFromSize(size, d.blockSize)
	if err != nil {
		return types.BlockID{}, err
	}

	if err = file.Truncate(size + int64(d.blockSize)); err != nil {
		return types.BlockID{}, fmt.Errorf("%w: %w", ErrIO, err)
	}

	atomic.AddUint64(&d.numAppends, 1)
	common.ShPrintf(common.DEBUG_INFO, "Append: %s block %d\n", fileName, blockNum)
	return types.NewBlockID(fileName, blockNum), nil
}

func (d *FileManagerImpl) Length(fileName string) (types.BlockNum, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	path, err := resolvePath(d.dbDir, fileName)
	if err != nil {
		return 0, err
	}
	fileInfo, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !fileInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", ErrIO, path)
	}
	return blockNumFromSize(fileInfo.Size(), d.blockSize)
}

func (d *FileManagerImpl) BlockSize() int {
	return d.blockSize
}

func (d *FileManagerImpl) IsNew() bool {
	return d.isNew
}

func (d *FileManagerImpl) GetNumReads() uint64 {
	return atomic.LoadUint64(&d.numReads)
}

func (d *FileManagerImpl) GetNumWrites() uint64 {
	return atomic.LoadUint64(&d.numWrites)
}

func (d *FileManagerImpl) GetNumAppends() uint64 {
	return atomic.LoadUint64(&d.numAppends)
}

// ShutDown does nothing because no file is kept open between calls
func (d *FileManagerImpl) ShutDown() {}

// DBDir returns the absolute db directory
func (d *FileManagerImpl) DBDir() string {
	return d.dbDir
}
