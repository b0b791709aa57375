package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dosada05/challengehub-cli/models"
	"github.com/Dosada05/challengehub-cli/poller"
	"github.com/Dosada05/challengehub-cli/services"
)

func newLeaderboardCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show or watch a phase split's leaderboard",
	}
	cmd.AddCommand(newLeaderboardShowCommand(app), newLeaderboardWatchCommand(app))
	return cmd
}

func newLeaderboardShowCommand(app *App) *cobra.Command {
	var phaseSplitID int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.Leaderboard.Fetch(cmd.Context(), phaseSplitID)
			if err != nil {
				return err
			}
			printLeaderboard(app, page)
			return nil
		},
	}

	cmd.Flags().IntVar(&phaseSplitID, "phase-split", 0, "challenge phase split id")
	_ = cmd.MarkFlagRequired("phase-split")
	return cmd
}

func newLeaderboardWatchCommand(app *App) *cobra.Command {
	var phaseSplitID int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the ranking and reprint it when it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, err := app.Leaderboard.Fetch(ctx, phaseSplitID)
			if err != nil {
				return err
			}
			printLeaderboard(app, page)

			handle := app.Poller.Start(ctx, services.LeaderboardSnapshot(page), func(ctx context.Context) (poller.Snapshot, error) {
				return app.Leaderboard.Snapshot(ctx, phaseSplitID)
			}, nil)

			// The flag only signals; the visible ranking is replaced on the
			// caller's terms, here by an explicit re-fetch per change.
			ticker := time.NewTicker(app.Config.PollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					handle.Stop()
					return nil
				case <-ticker.C:
					if !handle.UpdateAvailable() {
						continue
					}
					fresh, err := app.Leaderboard.Fetch(ctx, phaseSplitID)
					if err != nil {
						handle.Stop()
						return err
					}
					fmt.Fprintln(app.Out, "--- leaderboard updated ---")
					printLeaderboard(app, fresh)
					handle.Acknowledge(services.LeaderboardSnapshot(fresh))
				}
			}
		},
	}

	cmd.Flags().IntVar(&phaseSplitID, "phase-split", 0, "challenge phase split id")
	_ = cmd.MarkFlagRequired("phase-split")
	return cmd
}

func printLeaderboard(app *App, page *models.Page[models.LeaderboardRow]) {
	w := app.table()
	fmt.Fprintln(w, "RANK\tTEAM\tRESULT\tSUBMITTED")
	for i, row := range page.Results {
		scores := make([]string, 0, len(row.Result))
		for _, v := range row.Result {
			scores = append(scores, fmt.Sprintf("%.4f", v))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1, row.ParticipantTeamName, strings.Join(scores, " "), row.SubmittedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}
