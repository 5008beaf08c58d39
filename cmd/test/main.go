package main

import (
	"fmt"
	"os"
)

var testPaths = map[string]string{
	"semaphore": "./circuit/",
	"tornado":   "./circuit/",
	"signal":    "./signal/",
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/test <circuit>")
		fmt.Println()
		fmt.Println("Available: semaphore, tornado, signal")
		fmt.Println()
		fmt.Println("Prefer using `go test` directly:")
		fmt.Println("  go test ./circuit/... -v -timeout 5m")
		fmt.Println("  go test ./...                            # everything")
		os.Exit(1)
	}

	name := os.Args[1]
	path, ok := testPaths[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown target: %s\n", name)
		os.Exit(1)
	}
	fmt.Printf("To run tests for %s, use:\n", name)
	fmt.Printf("  go test %s -v -timeout 5m\n", path)
}
