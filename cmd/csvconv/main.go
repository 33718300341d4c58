package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/locojk/CSV-converter/internal/config"
	"github.com/locojk/CSV-converter/internal/logging"
	"github.com/locojk/CSV-converter/internal/pipeline"
	"github.com/locojk/CSV-converter/internal/prompt"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load configuration", "error", err)
		os.Exit(1)
	}

	cmd := "convert"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	// a blocked prompt read cannot observe a context, so an interrupt exits
	// directly
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "\nAborted.")
		os.Exit(130)
	}()
	ctx := context.Background()

	switch cmd {
	case "convert":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		bindFlags(fs, &cfg)
		_ = fs.Parse(args)
		must(cfg.Validate())

		logger := logging.New(cfg.Logging, version)
		svc := pipeline.NewConversionService(cfg, prompt.NewConsole(os.Stdin, os.Stdout), logger, os.Stdout)
		summary, err := svc.Run(ctx)
		if errors.Is(err, pipeline.ErrAborted) {
			fmt.Fprintln(os.Stderr, "\nAborted.")
			os.Exit(130)
		}
		must(err)
		if summary.Files > 0 {
			fmt.Printf("done files=%d groups=%d written=%d fallback=%d failed=%d skipped=%d unreadable=%d\n",
				summary.Files, summary.Groups, summary.Written, summary.Retried, summary.Failed,
				summary.SkippedFiles, summary.FailedFiles)
		}
		if cfg.WriteXLSX && summary.Groups > 0 {
			fmt.Printf("workbooks written=%d failed=%d\n", summary.Workbooks, summary.WorkbooksFailed)
		}
		if summary.HasFailures() {
			os.Exit(1)
		}
	case "preview":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		bindFlags(fs, &cfg)
		_ = fs.Parse(args)
		must(cfg.Validate())

		logger := logging.New(cfg.Logging, version)
		svc := pipeline.NewConversionService(cfg, nil, logger, os.Stdout)
		groups, err := svc.Preview(ctx)
		must(err)
		if len(groups) == 0 {
			fmt.Printf("No device groups found in '%s'.\n", cfg.InputDir)
			return
		}
		for _, g := range groups {
			fmt.Printf("%s -> %s.csv rows=%d\n", g.Source, g.Key, g.Rows)
		}
	case "version":
		fmt.Println(version)
	case "help":
		usage()
	default:
		usage()
		os.Exit(1)
	}
}

// bindFlags registers overrides for the environment-derived settings. Flags
// default to the loaded values, so an unset flag leaves cfg unchanged.
func bindFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.InputDir, "input", cfg.InputDir, "directory scanned recursively for *.csv")
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory receiving one CSV per device")
	fs.StringVar(&cfg.SourceEncoding, "encoding", cfg.SourceEncoding, "source text encoding (utf-8, cp1252, latin1, ...)")
	fs.StringVar(&cfg.InputDelimiter, "delimiter", cfg.InputDelimiter, `input field delimiter ("," ";" "\t")`)
	fs.StringVar(&cfg.BuildingDefault, "building", cfg.BuildingDefault, "building name offered as the prompt default")
	fs.StringVar(&cfg.EmptyPlaceholder, "placeholder", cfg.EmptyPlaceholder, "text written for empty output cells")
	fs.BoolVar(&cfg.WriteXLSX, "xlsx", cfg.WriteXLSX, "also write an .xlsx workbook per device")
	fs.BoolFunc("no-header", "omit the header row", func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		cfg.WriteHeader = !v
		return nil
	})
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "debug|info|warn|error")
}

func usage() {
	fmt.Println("usage: csvconv [command] [flags]")
	fmt.Println("commands:")
	fmt.Println("  convert   (default) --input=./raw --output=./processed [--encoding=utf-8] [--delimiter=,]")
	fmt.Println("            [--building=007_MRT] [--placeholder=] [--xlsx] [--no-header]")
	fmt.Println("  preview   same flags as convert; lists device groups without writing")
	fmt.Println("  version")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
