//go:build mage

// Package main contains Mage build targets for mindmap-pdf developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// resourceDirs is the layout Init creates for the external jars. Point
// MYMINDMAP_BASE_DIR at tools/ or copy it next to the binary as resources/.
var resourceDirs = []string{
	"tools/plantuml",
	"tools/batik",
}

// Init creates the directories the resolver searches for plantuml.jar and
// the Batik distribution.
func Init() error {
	for _, dir := range resourceDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Tool directories initialized.")
	fmt.Println("Place plantuml.jar in tools/plantuml and unpack batik-bin-1.19 into tools/batik,")
	fmt.Println("then export MYMINDMAP_BASE_DIR=$(pwd)/tools")
	return nil
}

const (
	binDir  = "bin"
	binName = "mindmap-pdf"
	cmdPkg  = "./cmd/mindmap-pdf"

	smokeOutput = "test_output.pdf"
	smokeSource = "@startmindmap\n* Root\n@endmindmap\n"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + buildVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Smoke converts a one-node mindmap with the built binary and checks that
// a non-empty PDF appears. It needs java and the jars installed.
func Smoke() error {
	mg.Deps(Build)

	src, err := os.CreateTemp("", "smoke-*.puml")
	if err != nil {
		return err
	}
	defer os.Remove(src.Name())
	if _, err := src.WriteString(smokeSource); err != nil {
		src.Close()
		return err
	}
	if err := src.Close(); err != nil {
		return err
	}

	fmt.Println("Running conversion test, output ->", smokeOutput)
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "convert", "-o", smokeOutput, src.Name()); err != nil {
		return fmt.Errorf("smoke conversion: %w", err)
	}
	info, err := os.Stat(smokeOutput)
	if err != nil {
		return fmt.Errorf("smoke output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("smoke output %s is empty", smokeOutput)
	}
	fmt.Println("Test finished.")
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

func buildVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// skipDir reports directories Stats never descends into.
func skipDir(name string) bool {
	return name == ".git" || name == binDir || name == "tools" || strings.HasPrefix(name, "_")
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				total++
			}
		}
		return sc.Err()
	})
	return total, err
}

// countDocWords counts words in markdown and YAML files.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			if path != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
