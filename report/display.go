package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// displayTranslateError displays a structured translation error, including the
// erroneous source text if the error carries a span.
func displayTranslateError(srcPath string, terr *TranslateError) {
	if terr.Span == nil {
		ErrorStyleBG.Print(" " + terr.Kind.String() + " ")
		fmt.Printf(" %s: %s\n\n", srcPath, terr.Message)
		return
	}

	ErrorStyleBG.Print(" " + terr.Kind.String() + " ")
	fmt.Printf(" %s:%d:%d: %s\n\n", srcPath, terr.Span.StartLine+1, terr.Span.StartCol+1, terr.Message)
	displaySourceText(srcPath, terr.Span)
}

// displayStdError displays a standard Go error.
func displayStdError(srcPath string, err error) {
	ErrorStyleBG.Print(" error ")
	fmt.Printf(" %s: %s\n\n", srcPath, err)
}

// displayFatal displays an unrecoverable error message.
func displayFatal(msg string) {
	ErrorStyleBG.Print(" fatal ")
	fmt.Println(" " + msg)
}

// displayWarning displays a warning message.
func displayWarning(msg string, args ...interface{}) {
	WarnStyleBG.Print(" warning ")
	WarnColorFG.Println(" " + fmt.Sprintf(msg, args...))
}

// displayInfo displays an informational message with a tag prefix.
func displayInfo(tag, msg string) {
	InfoStyleBG.Print(" " + tag + " ")
	fmt.Println(" " + msg)
}

/* -------------------------------------------------------------------------- */

// displaySourceText displays a segment of source text defined by a text span.
func displaySourceText(srcPath string, span *TextSpan) {
	// Open the file so we can read the desired source text.
	file, err := os.Open(srcPath)
	if err != nil {
		// The span display is decorative: if the source file cannot be
		// reopened, the message above still stands on its own.
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt32
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	// Calculate the maximum line number length and use it to generate the
	// format string for line numbers.
	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		// Print the line number, separator bar, and the source text with the
		// leading indent trimmed off.
		InfoColorFG.Printf(lineNumFmtStr, i+span.StartLine+1)
		fmt.Println(line[minIndent:])

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// The number of spaces before carret underlining begins.  For any line
		// which is not the starting line, this is always zero since the
		// underlining continues from the previous line.
		var carretPrefixCount int
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
		}

		// The number of characters at the end of the line that should not be
		// underlined.  Only nonzero on the last line.
		var carretSuffixCount int
		if i == len(lines)-1 {
			carretSuffixCount = len(line) - span.EndCol
		}

		carretCount := len(line) - carretSuffixCount - carretPrefixCount - minIndent
		if carretCount < 1 {
			carretCount = 1
		}

		fmt.Print(strings.Repeat(" ", carretPrefixCount))
		ErrorColorFG.Println(strings.Repeat("^", carretCount))
	}

	fmt.Println()
}

/* -------------------------------------------------------------------------- */

// phaseSpinner stores the current phase spinner.
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Translating")

// displayBeginPhase displays the beginning of a pipeline phase.
func displayBeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + strings.Repeat(" ", maxPhaseLength-len(phase)+2)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner, _ = phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// displayEndPhase displays the end of the current pipeline phase.
func displayEndPhase(success bool) {
	if phaseSpinner != nil {
		if success {
			phaseSpinner.Success(
				currentPhase+strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2),
				fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
			)
		} else {
			phaseSpinner.Fail(currentPhase + strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2))
		}

		phaseSpinner = nil
	}
}
