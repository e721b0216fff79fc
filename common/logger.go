package common

import (
	"fmt"
	"io"
	"os"
)

type LogLevel int32

const (
	DEBUG_INFO_DETAIL LogLevel = 1
	DEBUG_INFO        LogLevel = 2
	DEBUGGING         LogLevel = 8
	INFO              LogLevel = 16
	WARN              LogLevel = 32
	ERROR             LogLevel = 64
	FATAL             LogLevel = 128
)

// LogLevelSetting is the mask of log kinds which are actually printed
var LogLevelSetting LogLevel = ActiveLogKindSetting

// LogOutput is where ShPrintf prints to
var LogOutput io.Writer = os.Stdout

func ShPrintf(logLevel LogLevel, fmtStl string, a ...interface{}) {
	if logLevel&LogLevelSetting > 0 {
		fmt.Fprintf(LogOutput, fmtStl, a...)
	}
}
