package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/draft"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/surfaces/term"
	"github.com/goliatone/go-formflow/pkg/validation"
)

var runCmd = &cobra.Command{
	Use:   "run <schema-file>",
	Short: "Run a form interactively in the terminal",
	Long:  `Loads the schema and walks its stages with interactive prompts. The submitted payload is printed to stdout as JSON.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		draftPath, _ := cmd.Flags().GetString("draft")
		if err := runForm(cmd.Context(), args[0], draftPath); err != nil {
			if errors.Is(err, term.ErrAborted) {
				os.Exit(130)
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("draft", "", "Path to a draft file; progress is saved there and restored on the next run")
}

func runForm(ctx context.Context, schemaPath, draftPath string) error {
	s, err := loadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	policy := engine.Policy{
		Validator: validation.New(),
		Submitter: engine.SubmitterFunc(func(_ context.Context, payload map[string]any) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		}),
	}
	var opts []engine.Option
	if draftPath != "" {
		store, err := draft.NewFileStore(draftPath)
		if err != nil {
			return err
		}
		policy.Drafts = store
		opts = append(opts, engine.WithDraftRestore(true))
	}

	surface := term.NewSurface()
	eng, err := engine.New(surface, policy, opts...)
	if err != nil {
		return err
	}
	if err := eng.LoadSchema(ctx, s); err != nil {
		return err
	}

	session, err := term.NewSession(eng, surface)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}
