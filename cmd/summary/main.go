// Command summary loads one or more college directories and prints their
// majors, student and instructor summaries as text tables.
//
// Usage:
//
//	summary [-delim '\t'] [-header] [-log-level info] <college-dir>...
//	summary -root <data-dir>
//
// A college that fails to load is reported on stderr and skipped; the
// exit status is 1 if any college failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/gradebook/internal/college"
	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	delim := fs.String("delim", `\t`, "field delimiter, a single character")
	header := fs.Bool("header", false, "first line of every file is a header")
	root := fs.String("root", "", "load every college directory under this data root")
	parallel := fs.Int("parallel", college.DefaultMaxParallelLoads, "colleges loaded at once with -root")
	level := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if (*root == "") == (fs.NArg() == 0) {
		fmt.Fprintln(stderr, "usage: summary [flags] <college-dir>... | summary [flags] -root <data-dir>")
		fs.PrintDefaults()
		return 2
	}

	logger := logging.New(stderr, *level, "text")
	slog.SetDefault(logger)

	opts := core.LoadOptions{
		Reader: core.ReaderOptions{
			Delimiter: config.UnescapeDelimiter(*delim),
			Header:    *header,
			SkipBOM:   true,
		},
	}

	var results []college.Result
	if *root != "" {
		svc := college.NewService(*root, opts, *parallel)
		var err error
		results, err = svc.LoadAll(ctx)
		if err != nil {
			logger.Error("load colleges", "root", *root, "error", err)
			return 1
		}
	} else {
		for _, dir := range fs.Args() {
			repo, err := core.Load(dir, opts)
			results = append(results, college.Result{Name: filepath.Base(dir), Repo: repo, Err: err})
		}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error(core.FormatUserError(res.Err), "college", res.Name, "error", res.Err)
			continue
		}
		if err := printSummary(stdout, core.Summarize(res.Repo)); err != nil {
			logger.Error("write summary", "college", res.Name, "error", err)
			return 1
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}
