package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/app"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/configuration"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/logger"
)

const usage = `Usage:
  signedurls [-env FILE] <command> [arguments]

Commands:
  upload <file>   upload a file and record a signed URL for it
  sign            sign an object already in the bucket
  sweep           remove expired URL records
  manage          interactive URL record manager
  show <key>      show the active URL of one record
  serve           serve the URL records over HTTP
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("signedurls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := fs.String("env", ".env", "environment file to load")
	noClear := fs.Bool("no-clear", false, "do not clear the screen between menus")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	cmd, cmdArgs := rest[0], rest[1:]

	var needsObjects bool
	switch cmd {
	case "upload", "show":
		if len(cmdArgs) != 1 {
			fs.Usage()
			return 2
		}
		needsObjects = cmd == "upload"
	case "sign":
		needsObjects = true
	case "sweep", "manage", "serve":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}

	cfg, err := configuration.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := app.Open(ctx, cfg, log, needsObjects)
	defer cleanup()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	deps.In, deps.Out = stdin, stdout
	deps.ClearScreen = !*noClear
	a := app.New(cfg, log, deps)

	switch cmd {
	case "upload":
		_, err = a.Upload(ctx, cmdArgs[0])
	case "sign":
		_, _, err = a.SignExisting(ctx)
	case "sweep":
		_, err = a.Sweep(ctx)
	case "manage":
		err = a.Manage(ctx)
	case "show":
		_, err = a.Show(ctx, cmdArgs[0])
	case "serve":
		err = a.Serve(ctx)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
