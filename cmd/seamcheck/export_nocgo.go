//go:build !cgo

package main

import "fmt"

func runExport(_ cliFlags, _ string) error {
	return fmt.Errorf("export requires a cgo-enabled build")
}
