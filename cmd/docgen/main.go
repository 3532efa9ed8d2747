package main

import (
	"flag"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/rocketship-ai/casekit/internal/cli"
)

func main() {
	out := flag.String("out", "./docs/reference", "Directory the command reference is written to")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}

	rootCmd := cli.NewRootCmd()
	rootCmd.DisableAutoGenTag = true

	// Generate markdown documentation
	if err := doc.GenMarkdownTree(rootCmd, *out); err != nil {
		log.Fatal(err)
	}
}
