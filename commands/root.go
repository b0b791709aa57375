// Package commands is the hubctl CLI surface. Commands are thin: parse
// flags, call a service, print the result. All orchestration lives in the
// services and wizard packages.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dosada05/challengehub-cli/auth"
	"github.com/Dosada05/challengehub-cli/config"
	"github.com/Dosada05/challengehub-cli/credstore"
	"github.com/Dosada05/challengehub-cli/pagination"
	"github.com/Dosada05/challengehub-cli/poller"
	"github.com/Dosada05/challengehub-cli/services"
	"github.com/Dosada05/challengehub-cli/wizard"
)

// App bundles everything the commands need.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       credstore.Store
	Auth        *auth.Service
	Teams       *services.TeamService
	Challenges  *services.ChallengeService
	Submissions *services.SubmissionService
	Leaderboard *services.LeaderboardService
	Wizard      *wizard.Sequencer
	Poller      *poller.Poller
	Out         io.Writer
}

// NewRoot builds the hubctl command tree.
func NewRoot(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "hubctl",
		Short:         "Command-line client for the ChallengeHub platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newTeamsCommand(app),
		newChallengeCommand(app),
		newSubmitCommand(app),
		newSubmissionsCommand(app),
		newLeaderboardCommand(app),
	)
	return root
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.Out, 0, 8, 2, ' ', 0)
}

func (a *App) printCursor(c pagination.Cursor) {
	fmt.Fprintf(a.Out, "page %d of %d", c.CurrentPage, c.TotalPages)
	if c.HasNext {
		fmt.Fprint(a.Out, " (more available)")
	}
	fmt.Fprintln(a.Out)
}
