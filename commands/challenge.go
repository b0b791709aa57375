package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dosada05/challengehub-cli/gateway"
	"github.com/Dosada05/challengehub-cli/pagination"
	"github.com/Dosada05/challengehub-cli/wizard"
)

func newChallengeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Create and manage challenges",
	}
	cmd.AddCommand(
		newChallengeCreateCommand(app),
		newChallengeListCommand(app),
		newChallengeShowCommand(app),
		newChallengeUpdateCommand(app),
		newChallengePublishCommand(app),
	)
	return cmd
}

func newChallengeCreateCommand(app *App) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Run the five-step challenge creation wizard from a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := wizard.LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			result, err := app.Wizard.Run(cmd.Context(), manifest)
			if err != nil {
				var verr *gateway.ValidationError
				if errors.As(err, &verr) {
					printFieldErrors(app, verr)
					return fmt.Errorf("manifest rejected")
				}
				if result != nil && result.ChallengeID != 0 {
					// No rollback: report what exists so the operator can
					// resume or clean up server-side.
					fmt.Fprintf(app.Out, "Challenge %d was created but a later step failed (last completed: %s).\n",
						result.ChallengeID, result.Completed)
				}
				return err
			}

			fmt.Fprintf(app.Out, "Challenge %d created: %d leaderboard(s), %d phase(s), %d dataset split(s), %d phase split(s).\n",
				result.ChallengeID, len(result.LeaderboardIDs), len(result.PhaseIDs),
				len(result.DatasetSplitIDs), len(result.PhaseSplitIDs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the challenge manifest JSON")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func newChallengeListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.Challenges.List(cmd.Context())
			if err != nil {
				return err
			}
			w := app.table()
			fmt.Fprintln(w, "ID\tTITLE\tACTIVE\tPUBLISHED")
			for _, c := range page.Results {
				fmt.Fprintf(w, "%d\t%s\t%t\t%t\n", c.ID, c.Title, c.IsActive, c.Published)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			app.printCursor(pagination.Track(page.Count, page.Next, page.Previous, app.Config.PageSize))
			return nil
		},
	}
}

func newChallengeShowCommand(app *App) *cobra.Command {
	var challengeID int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one challenge with its phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			challenge, err := app.Challenges.Get(cmd.Context(), challengeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "#%d %s\n", challenge.ID, challenge.Title)
			fmt.Fprintf(app.Out, "%s\n", challenge.Description)
			fmt.Fprintf(app.Out, "runs %s to %s, published=%t\n",
				challenge.StartDate.Format("2006-01-02"), challenge.EndDate.Format("2006-01-02"), challenge.Published)

			phases, err := app.Challenges.ListPhases(cmd.Context(), challengeID)
			if err != nil {
				return err
			}
			w := app.table()
			fmt.Fprintln(w, "PHASE\tCODENAME\tPUBLIC\tMAX/DAY")
			for _, p := range phases {
				fmt.Fprintf(w, "%s\t%s\t%t\t%d\n", p.Name, p.Codename, p.IsPublic, p.MaxSubmissionsPerDay)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	_ = cmd.MarkFlagRequired("challenge")
	return cmd
}

func newChallengeUpdateCommand(app *App) *cobra.Command {
	var hostTeamID, challengeID int
	var title, description, guidelines string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Patch individual challenge fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make(map[string]any)
			if cmd.Flags().Changed("title") {
				fields["title"] = title
			}
			if cmd.Flags().Changed("description") {
				fields["description"] = description
			}
			if cmd.Flags().Changed("guidelines") {
				fields["submission_guidelines"] = guidelines
			}
			challenge, err := app.Challenges.Update(cmd.Context(), hostTeamID, challengeID, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Challenge %d updated.\n", challenge.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&hostTeamID, "host-team", 0, "host team id")
	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&guidelines, "guidelines", "", "new submission guidelines")
	_ = cmd.MarkFlagRequired("host-team")
	_ = cmd.MarkFlagRequired("challenge")
	return cmd
}

func newChallengePublishCommand(app *App) *cobra.Command {
	var hostTeamID, challengeID int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Challenges.Publish(cmd.Context(), hostTeamID, challengeID); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Challenge %d published.\n", challengeID)
			return nil
		},
	}

	cmd.Flags().IntVar(&hostTeamID, "host-team", 0, "host team id")
	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	_ = cmd.MarkFlagRequired("host-team")
	_ = cmd.MarkFlagRequired("challenge")
	return cmd
}

func printFieldErrors(app *App, verr *gateway.ValidationError) {
	for field, messages := range verr.Fields {
		for _, msg := range messages {
			fmt.Fprintf(app.Out, "  %s: %s\n", field, msg)
		}
	}
}
