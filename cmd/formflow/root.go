package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "formflow runs declarative multi-stage forms",
	Long:  `formflow loads a staged form schema (JSON or YAML) and can validate it, run it interactively in the terminal, render a stage as HTML, or derive a schema from an OpenAPI operation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSchemaFile parses a schema document by file extension: .yaml/.yml go
// through the YAML parser, everything else is treated as JSON.
func loadSchemaFile(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.ParseYAML(data)
	default:
		return schema.Parse(data)
	}
}
