package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dosada05/challengehub-cli/models"
	"github.com/Dosada05/challengehub-cli/pagination"
)

func newTeamsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage host and participant teams",
	}
	cmd.AddCommand(newTeamsListCommand(app), newTeamsCreateCommand(app), newTeamsLeaveCommand(app))
	return cmd
}

func newTeamsListCommand(app *App) *cobra.Command {
	var host bool
	var pageURL string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := app.table()
			var cursor pagination.Cursor

			if host {
				var teams *models.Page[models.HostTeam]
				var err error
				if pageURL != "" {
					teams, err = app.Teams.HostTeamsPage(cmd.Context(), pageURL)
				} else {
					teams, err = app.Teams.ListHostTeams(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "ID\tNAME\tCREATED BY")
				for _, t := range teams.Results {
					fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.TeamName, t.CreatedBy)
				}
				cursor = pagination.Track(teams.Count, teams.Next, teams.Previous, app.Config.PageSize)
			} else {
				var teams *models.Page[models.ParticipantTeam]
				var err error
				if pageURL != "" {
					teams, err = app.Teams.ParticipantTeamsPage(cmd.Context(), pageURL)
				} else {
					teams, err = app.Teams.ListParticipantTeams(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "ID\tNAME\tMEMBERS")
				for _, t := range teams.Results {
					fmt.Fprintf(w, "%d\t%s\t%d\n", t.ID, t.TeamName, len(t.Members))
				}
				cursor = pagination.Track(teams.Count, teams.Next, teams.Previous, app.Config.PageSize)
			}

			if err := w.Flush(); err != nil {
				return err
			}
			app.printCursor(cursor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&host, "host", false, "list host teams instead of participant teams")
	cmd.Flags().StringVar(&pageURL, "page-url", "", "follow a next/previous link from an earlier page")
	return cmd
}

func newTeamsCreateCommand(app *App) *cobra.Command {
	var host bool
	var teamURL string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if host {
				team, err := app.Teams.CreateHostTeam(cmd.Context(), args[0], teamURL)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Host team %q created with id %d.\n", team.TeamName, team.ID)
				return nil
			}
			team, err := app.Teams.CreateParticipantTeam(cmd.Context(), args[0], teamURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Participant team %q created with id %d.\n", team.TeamName, team.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&host, "host", false, "create a host team instead of a participant team")
	cmd.Flags().StringVar(&teamURL, "url", "", "optional team URL")
	return cmd
}

func newTeamsLeaveCommand(app *App) *cobra.Command {
	var teamID int

	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Remove yourself from a participant team",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Teams.RemoveSelf(cmd.Context(), teamID); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Left team %d.\n", teamID)
			return nil
		},
	}

	cmd.Flags().IntVar(&teamID, "team", 0, "participant team id")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}
