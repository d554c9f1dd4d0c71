package download

import "fmt"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// emitter is embedded by the executors and the manager to report progress
// through an optional callback.
type emitter struct {
	onProgress func(ProgressEvent)
}

func (e emitter) progress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}

func (e emitter) emit(level ProgressLevel, format string, args ...interface{}) {
	e.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level})
}

func (e emitter) infof(format string, args ...interface{})    { e.emit(LevelInfo, format, args...) }
func (e emitter) verbosef(format string, args ...interface{}) { e.emit(LevelVerbose, format, args...) }
func (e emitter) warnf(format string, args ...interface{})    { e.emit(LevelWarning, format, args...) }
func (e emitter) errorf(format string, args ...interface{})   { e.emit(LevelError, format, args...) }
func (e emitter) successf(format string, args ...interface{}) { e.emit(LevelSuccess, format, args...) }
