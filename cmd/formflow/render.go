package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/surfaces/html"
)

var renderCmd = &cobra.Command{
	Use:   "render <schema-file>",
	Short: "Render one stage of a form as a static HTML page",
	Long:  `Loads the schema, renders the requested stage with empty form state, and writes the HTML document to stdout or --out.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stage, _ := cmd.Flags().GetInt("stage")
		outPath, _ := cmd.Flags().GetString("out")
		if err := runRender(cmd.Context(), args[0], stage, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Int("stage", 0, "Zero-based stage index to render")
	renderCmd.Flags().String("out", "", "Write the HTML document to this file instead of stdout")
}

func runRender(ctx context.Context, schemaPath string, stage int, outPath string) error {
	s, err := loadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	renderer, err := html.New()
	if err != nil {
		return err
	}
	snapshot, err := html.NewSnapshot(renderer)
	if err != nil {
		return err
	}
	eng, err := engine.New(snapshot, engine.Policy{})
	if err != nil {
		return err
	}
	if err := eng.LoadSchema(ctx, s); err != nil {
		return err
	}
	if err := eng.RenderStage(ctx, stage); err != nil {
		return err
	}

	page, err := snapshot.Render(ctx)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = os.Stdout.Write(page)
		return err
	}
	return os.WriteFile(outPath, page, 0o644)
}
