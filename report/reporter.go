package report

import (
	"fmt"
	"os"
	"sync"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the
// set log level and is synchronized: its methods can be safely called from
// multiple goroutines (the harness verifies targets concurrently).
type Reporter struct {
	// The mutex used to synchronize different report method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// Indicates whether or not an error has been reported.
	isErr bool
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all messages to the user (default).
)

// rep is the global reporter instance.
var rep = &Reporter{
	m:        &sync.Mutex{},
	logLevel: LogLevelVerbose,
}

// InitReporter initializes the global reporter to the given log level.
func InitReporter(logLevel int) {
	rep = &Reporter{
		m:        &sync.Mutex{},
		logLevel: logLevel,
	}
}

// AnyErrors returns whether or not any errors were reported.
func AnyErrors() bool {
	return rep.isErr
}

/* -------------------------------------------------------------------------- */

// ReportError reports a translation error.  If the error is a TranslateError
// carrying a span, the erroneous source text is displayed with the message.
// The srcPath is the path of the source file being translated.
func ReportError(srcPath string, err error) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		rep.isErr = true

		if terr, ok := err.(*TranslateError); ok {
			displayTranslateError(srcPath, terr)
		} else {
			displayStdError(srcPath, err)
		}
	}
}

// ReportWarning reports a warning message.
func ReportWarning(msg string, args ...interface{}) {
	if rep.logLevel > LogLevelError {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayWarning(msg, args...)
	}
}

// ReportInfo reports an informational message.  These only display at the
// verbose log level.
func ReportInfo(tag, msg string) {
	if rep.logLevel == LogLevelVerbose {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayInfo(tag, msg)
	}
}

// ReportFatal reports an unrecoverable error and exits.
func ReportFatal(msg string, args ...interface{}) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayFatal(fmt.Sprintf(msg, args...))
	}

	os.Exit(1)
}

// DisplayInfoMessage displays a tagged message regardless of the log level.
func DisplayInfoMessage(tag, msg string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayInfo(tag, msg)
}

// ReportBeginPhase reports the beginning of a pipeline phase.  Only displays
// at the verbose log level.
func ReportBeginPhase(phase string) {
	if rep.logLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the end of the current pipeline phase.
func ReportEndPhase(success bool) {
	if rep.logLevel == LogLevelVerbose {
		displayEndPhase(success)
	}
}
