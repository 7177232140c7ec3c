package main

import (
	"context"
	"fmt"

	"github.com/seamcheck/seamcheck/internal/export"
)

func runDiagram(flags cliFlags) error {
	res, _, err := analyze(context.Background(), flags)
	if err != nil {
		return err
	}
	fmt.Print(export.GenerateMermaid(res.Chains))
	return nil
}
