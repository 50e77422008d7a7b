package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema-file>",
	Short: "Check a schema document for consistency",
	Long:  `Parses the schema and reports structural problems: duplicate IDs, dangling showIf references, condition cycles, choice fields without options.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("schema is valid")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	s, err := loadSchemaFile(path)
	if err != nil {
		return err
	}
	return schema.Validate(s)
}
