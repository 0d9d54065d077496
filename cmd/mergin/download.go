package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merginmaps/mergin-go/internal/sync"
	"github.com/merginmaps/mergin-go/internal/utils"
)

func init() {
	rootCmd.AddCommand(newDownloadCmd())
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "download NAMESPACE/NAME [DIRECTORY]",
		Aliases: []string{"clone"},
		Short:   "Download a project into a new local directory",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sync.ParseProjectID(args[0])
			if err != nil {
				return err
			}

			targetDir := ""
			if len(args) > 1 {
				if targetDir, err = utils.ResolvePath(args[1]); err != nil {
					return err
				}
			}

			env, err := loadEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			if existing, err := env.registry.FindByName(id); err != nil {
				return err
			} else if existing != nil {
				return fmt.Errorf("%s is already checked out at %s, use pull instead", id, existing.ProjectDir)
			}

			return env.coordinator.DownloadProject(cmd.Context(), id, targetDir)
		},
	}
}
