package main

import (
	"fmt"
	"os"

	"code.cloudfoundry.org/lager"
	"github.com/LevitateOS/recstrap/command"
	"github.com/LevitateOS/recstrap/pipeline"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

func main() {
	logger := lager.NewLogger("recstrap")
	logger.RegisterSink(lager.NewWriterSink(os.Stderr, lager.INFO))

	parser := flags.NewParser(&command.Recstrap, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"
	parser.Usage = "[OPTIONS] TARGET"

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			os.Exit(0)
		}

		logger.Error("parsing", err)
		os.Exit(1)
	}

	err = command.Recstrap.Execute(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recstrap: %s\n", err)
		os.Exit(exitStatus(err))
	}
}

// exitStatus maps a failure onto the stable numeric contract: typed
// pipeline errors exit with their own code, everything else with 1.
func exitStatus(err error) int {
	if perr, ok := errors.Cause(err).(*pipeline.Error); ok {
		return perr.Code.ExitCode()
	}

	return 1
}
