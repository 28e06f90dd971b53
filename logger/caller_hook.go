package logger

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// selfPackage is the import path of this package, e.g. "bcrawatch/logger".
var selfPackage = func() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	slash := strings.LastIndex(name, "/")
	if dot := strings.Index(name[slash+1:], "."); dot >= 0 {
		return name[:slash+1+dot]
	}
	return name
}()

// callerHook reports the first frame outside logrus and the wrappers in
// this package as the entry's caller.
type callerHook struct{}

func (callerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (callerHook) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !wrapperFrame(frame.Function) {
			entry.Caller = &frame
			return nil
		}
		if !more {
			return nil
		}
	}
}

func wrapperFrame(fn string) bool {
	return strings.HasPrefix(fn, "github.com/sirupsen/logrus") ||
		strings.HasPrefix(fn, selfPackage+".") ||
		strings.HasPrefix(fn, "runtime.")
}
