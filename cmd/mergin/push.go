package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPushCmd())
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "push [DIRECTORY]",
		Aliases: []string{"upload"},
		Short:   "Upload local changes of a project to the server",
		Long: "Upload local changes of a project to the server. When the server has\n" +
			"moved ahead of the local copy, the project is updated first and the\n" +
			"upload continues on top of the fresh state.",
		Args: cobra.MaximumNArgs(1),
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

			return env.coordinator.UploadProject(cmd.Context(), dir)
		},
	}
}
