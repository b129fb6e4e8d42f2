package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/mapboot/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly,
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("mapboot", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mapboot - bootstrap and state-synchronization host for the map client.

Usage:
  mapboot [options] [FRAGMENT]

Arguments:
  FRAGMENT
    The startup URL fragment, e.g. 'map=7/47.600/13.300&lang=de'.
    A leading '#' is accepted and ignored.

Options:
`)
		flagSet.PrintDefaults()
	}

	fragmentFlag := flagSet.String("fragment", "", "Startup URL fragment.")
	fFlag := flagSet.String("f", "", "Startup URL fragment (shorthand).")
	configFlag := flagSet.String("config", "", "Path to a bootstrap .hcl file or a directory of them.")
	l10nFlag := flagSet.String("l10n-path", "", "Path to the directory containing language packs.")
	syncFlag := flagSet.String("sync-url", "", "socket.io URL for live state sync. Empty disables the module.")
	listenFlag := flagSet.Int("listen", 0, "Port for the state inspection HTTP server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	fragment := ""
	if *fragmentFlag != "" {
		fragment = *fragmentFlag
	} else if *fFlag != "" {
		fragment = *fFlag
	} else if flagSet.NArg() > 0 {
		fragment = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config := &app.Config{
		Fragment:   fragment,
		ConfigPath: *configFlag,
		L10nPath:   *l10nFlag,
		SyncURL:    *syncFlag,
		ListenPort: *listenFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	}

	slog.Debug("CLI parser finished successfully.", "fragment", fragment)
	return config, false, nil
}
