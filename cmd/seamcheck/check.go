package main

import (
	"context"
	"fmt"
	"os"

	"github.com/seamcheck/seamcheck/internal/analyzer"
	"github.com/seamcheck/seamcheck/internal/config"
)

// analyze loads the project config, applies flag overrides, and runs the
// pipeline. Flags win over the config file.
func analyze(ctx context.Context, flags cliFlags) (*analyzer.Result, *config.ProjectConfig, error) {
	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return nil, nil, err
	}
	if flags.SpecPath != "" {
		cfg.SpecPath = flags.SpecPath
	}
	if flags.Output != "" {
		cfg.Output = flags.Output
	}
	if flags.CacheDir != "" {
		cfg.CacheDir = flags.CacheDir
	}
	if flags.NoCache {
		cfg.CacheDir = ""
	}
	if flags.Verbose {
		cfg.Verbose = true
	}

	var opts []analyzer.Option
	var pr *analyzer.ProgressReporter
	done := make(chan struct{})
	if cfg.Verbose {
		pr = analyzer.NewProgressReporter()
		opts = append(opts, analyzer.WithProgress(pr))
		go func() {
			defer close(done)
			for event := range pr.Subscribe() {
				fmt.Fprintln(os.Stderr, analyzer.FormatProgress(event))
			}
		}()
	} else {
		close(done)
	}

	res, err := analyzer.New(flags.ProjectRoot, cfg, opts...).Run(ctx)
	if pr != nil {
		pr.Close()
	}
	<-done
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

func runCheck(flags cliFlags) error {
	res, cfg, err := analyze(context.Background(), flags)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		out, err := res.Report.JSON()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(out, '\n'))
		if err != nil {
			return err
		}
	} else {
		fmt.Print(res.Report.Text())
	}

	if n := res.Report.Summary.Critical; n > 0 {
		return fmt.Errorf("%d critical contract mismatch(es)", n)
	}
	return nil
}
