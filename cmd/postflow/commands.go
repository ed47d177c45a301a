package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/estimate"
	"github.com/rpggio/postflow/internal/planner"
	"github.com/spf13/cobra"
)

func estimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Print projected milestones for projects awaiting editing",
		Long: `Print first version, review checkpoint and final delivery dates for every
active project that has a recording date and no revision cycles yet.

Examples:
  postflow estimate
  POSTFLOW_DB_PATH=/data/postflow.db postflow estimate
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, cleanup, err := setup(true)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := openApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.DB.Close()

			projects, err := a.Projects.List(cmd.Context(), project.ListOptions{})
			if err != nil {
				return err
			}
			history, err := a.Cycles.ByProject(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"durations":  estimate.Averages(history),
				"milestones": estimate.ForProjects(projects, history, estimate.OverridesFromProjects(projects)),
			})
		},
	}
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Ask the planning model for suggestions",
		Long: `Send the current projects, retainers and team to the planning model and
print its summary and suggested actions. Requires GOOGLE_GENAI_API_KEY.

Examples:
  postflow plan
  postflow plan --mode=semanal
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			cfg, logger, cleanup, err := setup(true)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := openApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.DB.Close()

			ctx := cmd.Context()
			snap := planner.Snapshot{}
			if snap.Projects, err = a.Projects.List(ctx, project.ListOptions{}); err != nil {
				return err
			}
			if snap.Retainers, err = a.Retainers.List(ctx, false); err != nil {
				return err
			}
			if snap.Team, err = a.Team.List(ctx); err != nil {
				return err
			}
			plan, err := a.Planner.Suggest(ctx, planner.ParseMode(mode), snap)
			if err != nil {
				return err
			}
			return printJSON(plan)
		},
	}
	cmd.Flags().String("mode", string(planner.ModeDaily), "Planning horizon: diario or semanal")
	return cmd
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an API key and print it once",
		Long: `Create a bearer token for the REST API and MCP endpoint. Only its hash is
stored, so the printed token cannot be shown again.

Examples:
  postflow keys add --description="n8n workflows"
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			description, _ := cmd.Flags().GetString("description")
			cfg, logger, cleanup, err := setup(true)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := openApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.DB.Close()

			token := "pf_" + uuid.NewString()
			if err := a.Keys.Add(cmd.Context(), token, description); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	add.Flags().String("description", "", "What the key is for")
	cmd.AddCommand(add)
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
