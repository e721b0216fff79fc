// this code is based on config.go of https://github.com/pzhzqt/goostub

package common

import "time"

// EnableDebug switches the exclusion lock of file managers to a deadlock-detecting one
// and turns on invariant checks that cost a little on every transfer.
var EnableDebug = false

// use on memory virtual storage or not (tests only)
const EnableOnMemStorage = false

// when a goroutine waits for the exclusion lock longer than this in debug mode,
// all goroutine stacks are dumped
var DeadlockTimeout = 30 * time.Second

const (
	// size of a block in byte when caller does not specify it
	DefaultBlockSize = 4096
	// size used by tests which mimic small-block setups
	BlockSizeForTest = 400
	// permission of files created by Append
	DBFilePerm = 0644
	// permission of the db directory created at startup
	DBDirPerm = 0755
	// bytes of an encoded int32 in a page
	SizeOfInt = 4

	ActiveLogKindSetting = INFO | WARN | ERROR | FATAL //| DEBUG_INFO | DEBUG_INFO_DETAIL
)
