package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/seamcheck/seamcheck/internal/mcptools"
)

func runServeMCP(flags cliFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "seamcheck MCP server listening on %s\n", flags.Addr)
	return mcptools.RunMCPServer(ctx, mcptools.NewContractService(), flags.Addr)
}
