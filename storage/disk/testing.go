// this code is based on testing.go of https://github.com/brunocalza/go-bustub

package disk

import (
	"os"
	"path/filepath"

	"github.com/ryogrid/SamehadaBlockIO/common"
)

// FileManagerTest is a FileManager on a temporary directory, for testing purposes
type FileManagerTest struct {
	path string
	FileManager
}

// NewFileManagerTest returns a FileManager whose directory is removed at ShutDown
func NewFileManagerTest(blockSize int) FileManager {
	return newFileManagerTest(blockSize, common.EnableOnMemStorage)
}

func newFileManagerTest(blockSize int, onMem bool) FileManager {
	// Retrieve a temporary path.
	tmpDir, err := os.MkdirTemp("", "samehada_blockio.")
	if err != nil {
		panic(err)
	}
	// let the FileManager create the directory itself
	dbDir := filepath.Join(tmpDir, "db")

	var fm FileManager
	if onMem {
		fm, err = NewVirtualFileManagerImpl(dbDir, blockSize)
	} else {
		fm, err = NewFileManagerImpl(dbDir, blockSize)
	}
	if err != nil {
		os.RemoveAll(tmpDir)
		panic(err)
	}
	return &FileManagerTest{tmpDir, fm}
}

// ShutDown closes the FileManager and removes the temporary directory
func (d *FileManagerTest) ShutDown() {
	defer os.RemoveAll(d.path)
	d.FileManager.ShutDown()
}

// DBDir returns the directory holding block files
func (d *FileManagerTest) DBDir() string {
	return filepath.Join(d.path, "db")
}
