//go:build mage

// Package main contains Mage build targets for pubmed-harvest developer tooling.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "pubmed-harvest"
	cmdPkg  = "./cmd/pubmed-harvest"
)

var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/, stamping the version from git
// when available.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", binPath, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Fetch builds the CLI and runs a fetch over the default terms. Set
// NCBI_API_KEY to shorten the pause between terms.
func Fetch() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "fetch")
}

// Debug builds the CLI and runs the connectivity probe, a test search, and
// the store summary.
func Debug() error {
	mg.Deps(Build)
	for _, args := range [][]string{
		{"debug", "connect"},
		{"debug", "search"},
		{"debug", "store"},
	} {
		if err := sh.RunV(binPath, args...); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints project metrics: Go production/test LOC and the number of
// rows in papers.csv.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	rows, err := countStoreRows("papers.csv")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Articles (papers.csv):           %d\n", rows)
	return nil
}

// countGoLines walks the tree and counts non-blank lines in Go files,
// split into production and test code. Directories starting with "_" or
// "." are skipped, as the go tool does.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countStoreRows asks the CLI for the store summary. A store that
// cannot be read counts as empty.
func countStoreRows(path string) (int, error) {
	mg.Deps(Build)
	out, err := sh.Output(binPath, "debug", "store", "--json", "--store", path, "--log-level", "error")
	if err != nil {
		return 0, nil
	}
	var sum struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		return 0, fmt.Errorf("parsing store summary: %w", err)
	}
	return sum.Total, nil
}
