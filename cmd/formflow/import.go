package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/openapiform"
)

var importCmd = &cobra.Command{
	Use:   "import <openapi-file>",
	Short: "Derive a form schema from an OpenAPI operation",
	Long:  `Reads an OpenAPI document and converts the JSON request body of the operation named by --operation into a single-stage form schema. The result is a starting point; staging and showIf conditions are authored by hand afterwards.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		operationID, _ := cmd.Flags().GetString("operation")
		outPath, _ := cmd.Flags().GetString("out")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		if err := runImport(cmd, args[0], operationID, outPath, asYAML); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("operation", "", "operationId whose request body becomes the form (required)")
	importCmd.Flags().String("out", "", "Write the generated schema to this file instead of stdout")
	importCmd.Flags().Bool("yaml", false, "Emit YAML instead of JSON")
	_ = importCmd.MarkFlagRequired("operation")
}

func runImport(cmd *cobra.Command, docPath, operationID, outPath string, asYAML bool) error {
	s, err := openapiform.ImportFile(cmd.Context(), docPath, operationID)
	if err != nil {
		return err
	}

	var data []byte
	if asYAML {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}
	if !asYAML {
		data = append(data, '\n')
	}

	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
