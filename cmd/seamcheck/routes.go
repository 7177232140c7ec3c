package main

import (
	"context"
	"fmt"
)

func runRoutes(flags cliFlags) error {
	res, _, err := analyze(context.Background(), flags)
	if err != nil {
		return err
	}
	if res.Report.Routes == nil {
		return fmt.Errorf("no API document configured; pass -spec or set specPath in seamcheck.yml")
	}

	rec := res.Report.Routes
	if len(rec.MissingInSpec) == 0 && len(rec.MissingInCode) == 0 {
		fmt.Println("Routes match the API document.")
		return nil
	}

	if len(rec.MissingInSpec) > 0 {
		fmt.Println("Implemented but not documented:")
		for _, r := range rec.MissingInSpec {
			fmt.Printf("  %s\n", r)
		}
	}
	if len(rec.MissingInCode) > 0 {
		fmt.Println("Documented but not implemented:")
		for _, r := range rec.MissingInCode {
			fmt.Printf("  %s\n", r)
		}
	}
	return fmt.Errorf("%d route(s) out of sync", len(rec.MissingInSpec)+len(rec.MissingInCode))
}
