package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/mindtab/mindtab/internal/cache"
	"github.com/mindtab/mindtab/internal/client"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/prefs"
	"github.com/mindtab/mindtab/internal/reorder"
	"github.com/mindtab/mindtab/internal/ui"
	"github.com/spf13/cobra"
)

var errOutsideProject = errors.New("goal is not in the active project")

func GoalsCmd(opts *Options) *cobra.Command {
	goals := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"g"},
		Short:   "List, add, move and toggle goals",
	}

	goals.AddCommand(goalsListCmd(opts))
	goals.AddCommand(goalsAddCmd(opts))
	goals.AddCommand(goalsMoveCmd(opts))
	goals.AddCommand(goalsToggleCmd(opts))

	return goals
}

func goalsListCmd(opts *Options) *cobra.Command {
	var view string

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the board, or a flat list in list view",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := localPreferences(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if view != "" {
				p.ViewMode = view
			}

			c, err := opts.Client(cmd.Context())
			if err != nil {
				return err
			}
			goals, err := c.Goals(cmd.Context())
			if err != nil {
				return err
			}

			board := reorder.NewBoard(filterProject(goals, p.ActiveProject))
			if p.ViewMode == model.ViewModeList {
				return printList(cmd.OutOrStdout(), board)
			}
			return printBoard(cmd.OutOrStdout(), board)
		},
	}
	list.Flags().StringVar(&view, "view", "", "kanban or list, overrides the stored view mode")

	return list
}

func goalsAddCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Create a pending goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.Client(cmd.Context())
			if err != nil {
				return err
			}
			goal, err := c.CreateGoal(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goal.ID)
			return nil
		},
	}
}

func goalsMoveCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "move <goal-id> <target>",
		Short: "Drop a goal onto another goal or onto a column (pending, in_progress, completed)",
		Long:  "Both goals must be in the active project when one is set.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := localPreferences(cmd.Context(), opts)
			if err != nil {
				return err
			}
			mover, err := newMover(cmd.Context(), opts, p.ActiveProject, args...)
			if err != nil {
				return err
			}
			plan, err := mover.Move(cmd.Context(), args[0], args[1])
			return reportPlan(cmd.OutOrStdout(), plan, err)
		},
	}
}

func goalsToggleCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <goal-id>",
		Short: "Advance a goal to its next status",
		Long:  "In list view a goal flips between pending and completed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := localPreferences(cmd.Context(), opts)
			if err != nil {
				return err
			}
			mover, err := newMover(cmd.Context(), opts, p.ActiveProject, args[0])
			if err != nil {
				return err
			}

			var plan *reorder.Plan
			if p.ViewMode == model.ViewModeList {
				plan, err = mover.ToggleList(cmd.Context(), args[0])
			} else {
				plan, err = mover.Toggle(cmd.Context(), args[0])
			}
			return reportPlan(cmd.OutOrStdout(), plan, err)
		},
	}
}

// newMover loads the current board into a cache backed by the API. The mover
// works on the whole board, since positions are numbered across projects, but
// ids hidden by the active project are refused.
func newMover(ctx context.Context, opts *Options, projectID string, ids ...string) (*reorder.Mover, error) {
	c, err := opts.Client(ctx)
	if err != nil {
		return nil, loginRequired(err)
	}
	goals := cache.New(c.Goals)
	err = goals.Refresh(ctx)
	if err != nil {
		return nil, loginRequired(err)
	}
	err = requireVisible(goals.Goals(), projectID, ids...)
	if err != nil {
		return nil, err
	}
	return reorder.NewMover(goals, c), nil
}

// requireVisible fails for a goal id outside the active project. Column names
// and unknown ids pass through to the mover.
func requireVisible(goals []model.Goal, projectID string, ids ...string) error {
	if projectID == "" {
		return nil
	}
	visible := filterProject(goals, projectID)
	for _, id := range ids {
		if model.IsBoardStatus(id) {
			continue
		}
		byID := func(g model.Goal) bool { return g.ID == id }
		if slices.ContainsFunc(goals, byID) && !slices.ContainsFunc(visible, byID) {
			return fmt.Errorf("%s: %w", id, errOutsideProject)
		}
	}
	return nil
}

func localPreferences(ctx context.Context, opts *Options) (prefs.Preferences, error) {
	store, err := opts.Preferences()
	if err != nil {
		return prefs.Preferences{}, err
	}
	return store.Load(ctx)
}

func loginRequired(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return errNotLoggedIn
	}
	return err
}

func reportPlan(w io.Writer, plan *reorder.Plan, err error) error {
	switch {
	case errors.Is(err, reorder.ErrNoop):
		fmt.Fprintln(w, "Nothing to move")
		return nil
	case errors.Is(err, reorder.ErrUnknownItem), errors.Is(err, reorder.ErrStaleTarget):
		return fmt.Errorf("%w, run `mindtab goals list` to see current ids", err)
	case errors.Is(err, client.ErrUnauthorized):
		return errNotLoggedIn
	case err != nil:
		return err
	}

	fmt.Fprintf(w, "%s: %s -> %s (%d updated)\n", plan.GoalID, ui.Label(plan.From), ui.Label(plan.To), len(plan.Updates))
	return nil
}

func filterProject(goals []model.Goal, projectID string) []model.Goal {
	if projectID == "" {
		return goals
	}
	var out []model.Goal
	for _, g := range goals {
		if g.ProjectID != nil && *g.ProjectID == projectID {
			out = append(out, g)
		}
	}
	return out
}

func printBoard(w io.Writer, board reorder.Board) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, status := range model.BoardStatuses {
		column := board.Column(status)
		fmt.Fprintf(tw, "%s (%d)\n", ui.Label(status), len(column))
		for _, g := range column {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", g.ID, g.Title, ui.Label(g.Priority))
		}
	}
	return tw.Flush()
}

func printList(w io.Writer, board reorder.Board) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range board.Goals() {
		mark := "[ ]"
		if g.Status == model.GoalStatusCompleted {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, g.ID, g.Title)
	}
	return tw.Flush()
}
