package cmd

import (
	"io"

	"github.com/mindtab/mindtab/internal/prefs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func PrefsCmd(opts *Options) *cobra.Command {
	p := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the view mode and active project",
	}

	p.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the local preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := localPreferences(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), current)
		},
	})

	p.AddCommand(prefsSetCmd(opts))

	p.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace the local preferences with the ones stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.Client(cmd.Context())
			if err != nil {
				return err
			}
			remote, err := c.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			store, err := opts.Preferences()
			if err != nil {
				return err
			}
			err = store.Save(cmd.Context(), remote)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), remote)
		},
	})

	return p
}

func prefsSetCmd(opts *Options) *cobra.Command {
	var (
		view    string
		project string
		push    bool
	)

	set := &cobra.Command{
		Use:   "set",
		Short: "Change local preferences, optionally pushing them to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Preferences()
			if err != nil {
				return err
			}

			updated, err := store.Update(cmd.Context(), func(p *prefs.Preferences) {
				if cmd.Flags().Changed("view") {
					p.ViewMode = view
				}
				if cmd.Flags().Changed("project") {
					p.ActiveProject = project
				}
			})
			if err != nil {
				return err
			}

			if push {
				c, err := opts.Client(cmd.Context())
				if err != nil {
					return err
				}
				err = c.SavePreferences(cmd.Context(), updated)
				if err != nil {
					return err
				}
			}

			return printYAML(cmd.OutOrStdout(), updated)
		},
	}
	set.Flags().StringVar(&view, "view", "", "kanban or list")
	set.Flags().StringVar(&project, "project", "", "active project id, empty for all")
	set.Flags().BoolVar(&push, "push", false, "also save on the server")

	return set
}

func printYAML(w io.Writer, p prefs.Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
