package cmd

import (
	"os"

	"github.com/ComedicChimera/olive"

	"rrt/common"
	"rrt/report"
)

// Execute is the main entry point for the `rrt` CLI utility.
func Execute() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("rrt", "rrt translates restricted Python functions to statically typed targets", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	transCmd := cli.AddSubcommand("translate", "translate a source function to the configured targets", true)
	transCmd.AddPrimaryArg("source-path", "the path to the source file", true)
	transFuncArg := transCmd.AddStringArg("func", "f", "the name of the function to translate", false)
	transFuncArg.SetDefaultValue("")
	transOutArg := transCmd.AddStringArg("outdir", "o", "the directory artifacts are written to", false)
	transOutArg.SetDefaultValue("build")

	verifyCmd := cli.AddSubcommand("verify", "translate a source function and check it against a test suite", true)
	verifyCmd.AddPrimaryArg("source-path", "the path to the source file", true)
	verifyFuncArg := verifyCmd.AddStringArg("func", "f", "the name of the function to translate", false)
	verifyFuncArg.SetDefaultValue("")
	verifyOutArg := verifyCmd.AddStringArg("outdir", "o", "the directory artifacts are written to", false)
	verifyOutArg.SetDefaultValue("build")
	verifyCmd.AddStringArg("suite", "s", "the path to the test-suite file", true)

	cli.AddSubcommand("version", "print the rrt version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.ReportFatal(err.Error())
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	logLevel := logLevelOf(result.Arguments["loglevel"].(string))

	switch subcmdName {
	case "translate":
		execTranslateCommand(subResult, logLevel)
	case "verify":
		execVerifyCommand(subResult, logLevel)
	case "version":
		report.DisplayInfoMessage("rrt version", common.RRTVersion)
	}
}

// logLevelOf converts a log level selector value to a reporter log level.
func logLevelOf(selector string) int {
	switch selector {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		return report.LogLevelVerbose
	}
}

// execTranslateCommand executes the translate subcommand and handles all of
// its errors.
func execTranslateCommand(result *olive.ArgParseResult, logLevel int) {
	report.InitReporter(logLevel)

	if !newTranslatorFor(result).Translate() {
		os.Exit(1)
	}
}

// execVerifyCommand executes the verify subcommand and handles all of its
// errors.
func execVerifyCommand(result *olive.ArgParseResult, logLevel int) {
	report.InitReporter(logLevel)

	t := newTranslatorFor(result)
	if !t.Translate() {
		os.Exit(1)
	}

	if !t.Verify(result.Arguments["suite"].(string)) {
		os.Exit(1)
	}
}

// newTranslatorFor creates a translator from the shared pipeline arguments.
func newTranslatorFor(result *olive.ArgParseResult) *Translator {
	srcPath, _ := result.PrimaryArg()
	return NewTranslator(
		srcPath,
		result.Arguments["func"].(string),
		result.Arguments["outdir"].(string),
	)
}
