package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos, newest first",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.client().List(cmd.Context())
			if err != nil {
				return err
			}
			slices.Reverse(items)
			app.log.Debug().Int("count", len(items)).Msg("listed")
			ui.Panel(cmd.OutOrStdout(), listLines(items, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "Group output into pending and completed")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <content...>",
		Short: "Create a todo",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := app.client().Create(cmd.Context(), model.NewItem{Content: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			app.log.Debug().Int64("id", it.ID).Msg("todo created")
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added #%d", it.ID))
			return nil
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a todo between pending and completed",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			c := app.client()
			items, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			i := slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
			if i < 0 {
				return fmt.Errorf("todo %d not found (run `todo ls` to see ids)", id)
			}
			next := !items[i].IsCompleted
			if _, err := c.Update(cmd.Context(), id, model.CompletedPatch(next)); err != nil {
				return err
			}
			app.log.Debug().Int64("id", id).Bool("completed", next).Msg("todo toggled")
			if next {
				ui.OK(cmd.OutOrStdout(), fmt.Sprintf("completed #%d", id))
			} else {
				ui.OK(cmd.OutOrStdout(), fmt.Sprintf("resumed #%d", id))
			}
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			if err := app.client().Delete(cmd.Context(), id); err != nil {
				return err
			}
			app.log.Debug().Int64("id", id).Msg("todo deleted")
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <content...>",
		Short: "Replace the content of a todo",
		Args:  usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			content := strings.Join(args[1:], " ")
			if _, err := app.client().Update(cmd.Context(), id, model.ContentPatch(content)); err != nil {
				return err
			}
			app.log.Debug().Int64("id", id).Msg("todo edited")
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("saved #%d", id))
			return nil
		},
	}
}
