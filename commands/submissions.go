package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dosada05/challengehub-cli/pagination"
	"github.com/Dosada05/challengehub-cli/poller"
	"github.com/Dosada05/challengehub-cli/services"
)

func newSubmitCommand(app *App) *cobra.Command {
	var challengeID, phaseID int
	var filePath, methodName, methodDescription, projectURL, publicationURL string
	var public bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Upload a submission to a challenge phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("open submission file: %w", err)
			}
			defer f.Close()

			sub, err := app.Submissions.Create(cmd.Context(), challengeID, phaseID, services.SubmissionInput{
				File:              f,
				FileName:          filepath.Base(filePath),
				MethodName:        methodName,
				MethodDescription: methodDescription,
				ProjectURL:        projectURL,
				PublicationURL:    publicationURL,
				IsPublic:          public,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Submission %d accepted, status %s.\n", sub.ID, sub.Status)
			return nil
		},
	}

	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	cmd.Flags().IntVar(&phaseID, "phase", 0, "challenge phase id")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "submission file")
	cmd.Flags().StringVar(&methodName, "method-name", "", "method name")
	cmd.Flags().StringVar(&methodDescription, "method-description", "", "method description")
	cmd.Flags().StringVar(&projectURL, "project-url", "", "project URL")
	cmd.Flags().StringVar(&publicationURL, "publication-url", "", "publication URL")
	cmd.Flags().BoolVar(&public, "public", false, "make the submission public")
	_ = cmd.MarkFlagRequired("challenge")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSubmissionsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect submissions of a challenge phase",
	}
	cmd.AddCommand(
		newSubmissionsListCommand(app),
		newSubmissionsWatchCommand(app),
		newSubmissionsVisibilityCommand(app),
	)
	return cmd
}

func newSubmissionsListCommand(app *App) *cobra.Command {
	var challengeID, phaseID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.Submissions.List(cmd.Context(), challengeID, phaseID)
			if err != nil {
				return err
			}
			w := app.table()
			fmt.Fprintln(w, "ID\tSTATUS\tMETHOD\tPUBLIC\tSUBMITTED")
			for _, s := range page.Results {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n",
					s.ID, s.Status, s.MethodName, s.IsPublic, s.SubmittedAt.Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			app.printCursor(pagination.Track(page.Count, page.Next, page.Previous, app.Config.PageSize))
			return nil
		},
	}

	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	cmd.Flags().IntVar(&phaseID, "phase", 0, "challenge phase id")
	_ = cmd.MarkFlagRequired("challenge")
	_ = cmd.MarkFlagRequired("phase")
	return cmd
}

func newSubmissionsWatchCommand(app *App) *cobra.Command {
	var challengeID, phaseID int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for new submissions and status changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			baseline, err := app.Submissions.Snapshot(ctx, challengeID, phaseID)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Watching phase %d (%d submissions). Ctrl-C to stop.\n", phaseID, baseline.Count)

			handle := app.Poller.Start(ctx, baseline, func(ctx context.Context) (poller.Snapshot, error) {
				return app.Submissions.Snapshot(ctx, challengeID, phaseID)
			}, func(snap poller.Snapshot) {
				fmt.Fprintf(app.Out, "update available: %d submissions\n", snap.Count)
			})

			<-ctx.Done()
			handle.Stop()
			return nil
		},
	}

	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	cmd.Flags().IntVar(&phaseID, "phase", 0, "challenge phase id")
	_ = cmd.MarkFlagRequired("challenge")
	_ = cmd.MarkFlagRequired("phase")
	return cmd
}

func newSubmissionsVisibilityCommand(app *App) *cobra.Command {
	var challengeID, phaseID, submissionID int
	var public bool

	cmd := &cobra.Command{
		Use:   "set-visibility",
		Short: "Toggle a submission's leaderboard visibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := app.Submissions.SetVisibility(cmd.Context(), challengeID, phaseID, submissionID, public)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Submission %d is_public=%t.\n", sub.ID, sub.IsPublic)
			return nil
		},
	}

	cmd.Flags().IntVar(&challengeID, "challenge", 0, "challenge id")
	cmd.Flags().IntVar(&phaseID, "phase", 0, "challenge phase id")
	cmd.Flags().IntVar(&submissionID, "submission", 0, "submission id")
	cmd.Flags().BoolVar(&public, "public", true, "desired visibility")
	_ = cmd.MarkFlagRequired("challenge")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("submission")
	return cmd
}
