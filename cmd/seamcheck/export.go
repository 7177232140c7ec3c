//go:build cgo

package main

import (
	"context"
	"fmt"

	"github.com/seamcheck/seamcheck/internal/export"
)

func runExport(flags cliFlags, dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("usage: seamcheck export -db <path>")
	}

	ctx := context.Background()
	res, _, err := analyze(ctx, flags)
	if err != nil {
		return err
	}

	exporter, err := export.NewKuzuExporter(dbPath)
	if err != nil {
		return fmt.Errorf("open graph database: %w", err)
	}
	defer exporter.Close()

	if err := exporter.InitSchema(ctx); err != nil {
		return err
	}
	if err := exporter.ExportGraph(ctx, res.Graph); err != nil {
		return err
	}
	if err := exporter.ExportChains(ctx, res.Chains); err != nil {
		return err
	}

	fmt.Printf("exported %d chains to %s\n", len(res.Chains), dbPath)
	return nil
}
