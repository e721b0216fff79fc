package disk

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dsnet/golib/memfile"
	"github.com/ryogrid/SamehadaBlockIO/common"
	"github.com/ryogrid/SamehadaBlockIO/storage/page"
	"github.com/ryogrid/SamehadaBlockIO/types"
)

// VirtualFileManagerImpl keeps every block file in memory.
// It behaves as FileManagerImpl does, except that nothing survives the process.
type VirtualFileManagerImpl struct {
	dbDir      string
	blockSize  int
	files      map[string]*memfile.File
	mutex      *common.ExclusionLock
	numReads   uint64
	numWrites  uint64
	numAppends uint64
}

func NewVirtualFileManagerImpl(dbDir string, blockSize int) (FileManager, error) {
	if err := validateBlockSize(blockSize); err != nil {
		return nil, err
	}
	return &VirtualFileManagerImpl{
		dbDir:     dbDir,
		blockSize: blockSize,
		files:     make(map[string]*memfile.File),
		mutex:     common.NewExclusionLock(),
	}, nil
}

// lookup must be called with mutex held
func (d *VirtualFileManagerImpl) lookup(fileName string) (string, *memfile.File, error) {
	path, err := resolvePath(d.dbDir, fileName)
	if err != nil {
		return "", nil, err
	}
	return path, d.files[path], nil
}

func (d *VirtualFileManagerImpl) Read(block types.BlockID, p *page.Page) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	path, file, err := d.lookup(block.FileName())
	if err != nil {
		return err
	}
	if file == nil {
		common.ShPrintf(common.WARN, "Read: %s does not exist\n", path)
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	offset := block.Offset(d.blockSize)
	size := int64(len(file.Bytes()))
	if offset >= size {
		return fmt.Errorf("%w: %v starts at %d but file size is %d", ErrShortBlock, block, offset, size)
	}

	buf := make([]byte, d.blockSize)
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

func (d *VirtualFileManagerImpl) Write(block types.BlockID, p *page.Page) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if p.Len() > d.blockSize {
		return fmt.Errorf("%w: %d > %d", ErrBlockOverflow, p.Len(), d.blockSize)
	}
	path, file, err := d.lookup(block.FileName())
	if err != nil {
		return err
	}
	if file == nil {
		common.ShPrintf(common.WARN, "Write: %s does not exist\n", path)
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	if _, err = file.WriteAt(p.Contents(), block.Offset(d.blockSize)); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	atomic.AddUint64(&d.numWrites, 1)
	common.ShPrintf(common.DEBUG_INFO, "Write: %v\n", block)
	return nil
}

func (d *VirtualFileManagerImpl) Append(fileName string) (types.BlockID, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	path, file, err := d.lookup(fileName)
	if err != nil {
		return types.BlockID{}, err
	}
	if file == nil {
		file = memfile.New(make([]byte, 0))
		d.files[path] = file
	}

	size := int64(len(file.Bytes()))
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

func (d *VirtualFileManagerImpl) Length(fileName string) (types.BlockNum, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, file, err := d.lookup(fileName)
	if err != nil {
		return 0, err
	}
	if file == nil {
		return 0, nil
	}
	return blockNumFromSize(int64(len(file.Bytes())), d.blockSize)
}

func (d *VirtualFileManagerImpl) BlockSize() int {
	return d.blockSize
}

// IsNew is always true. There is nothing to reopen.
func (d *VirtualFileManagerImpl) IsNew() bool {
	return true
}

func (d *VirtualFileManagerImpl) GetNumReads() uint64 {
	return atomic.LoadUint64(&d.numReads)
}

func (d *VirtualFileManagerImpl) GetNumWrites() uint64 {
	return atomic.LoadUint64(&d.numWrites)
}

func (d *VirtualFileManagerImpl) GetNumAppends() uint64 {
	return atomic.LoadUint64(&d.numAppends)
}

// ShutDown drops all files
func (d *VirtualFileManagerImpl) ShutDown() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.files = make(map[string]*memfile.File)
}
