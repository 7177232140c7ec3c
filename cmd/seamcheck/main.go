// Command seamcheck verifies data contracts across a Python backend and
// a TypeScript frontend, reporting schema drift along each data chain.
package main

import (
	"flag"
	"fmt"
	"os"
)

// CLI flags shared by the analysis subcommands.
type cliFlags struct {
	ProjectRoot string
	SpecPath    string
	Output      string
	CacheDir    string
	Verbose     bool
	NoCache     bool
	Addr        string
}

// version is set by the linker at build time.
var version = "dev"

const usage = `usage: seamcheck [command] [flags]

Commands:
  check      analyze the project and report contract mismatches (default)
  routes     reconcile discovered routes against the API document
  diagram    print the chain graph as a Mermaid flowchart
  export     write the code graph and chains to a Kuzu database
  serve-mcp  run the MCP server exposing the analysis tools
  version    print version and exit
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "check"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command = args[0]
		args = args[1:]
	}

	var flags cliFlags
	fs := flag.NewFlagSet("seamcheck", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target project")
	fs.StringVar(&flags.SpecPath, "spec", "", "API document path, relative to the project root")
	fs.StringVar(&flags.Output, "output", "", "report format: text or json")
	fs.StringVar(&flags.CacheDir, "cache-dir", "", "graph cache directory")
	fs.BoolVar(&flags.NoCache, "no-cache", false, "bypass the graph cache")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable progress output")
	fs.StringVar(&flags.Addr, "addr", "localhost:8391", "listen address for serve-mcp")
	dbPath := fs.String("db", "", "Kuzu database path for export")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch command {
	case "check":
		return runCheck(flags)
	case "routes":
		return runRoutes(flags)
	case "diagram":
		return runDiagram(flags)
	case "export":
		return runExport(flags, *dbPath)
	case "serve-mcp":
		return runServeMCP(flags)
	case "version":
		fmt.Println(version)
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
