package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPullCmd())
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "pull [DIRECTORY]",
		Aliases: []string{"update"},
		Short:   "Update a local project to the latest server version",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveProjectDir(args)
			if err != nil {
				return err
			}

			env, err := loadEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			return env.coordinator.UpdateProject(cmd.Context(), dir)
		},
	}
}
