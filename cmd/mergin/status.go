package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merginmaps/mergin-go/internal/sync"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [DIRECTORY]",
		Short: "Show local changes of a project since the last sync",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveProjectDir(args)
			if err != nil {
				return err
			}

			env, err := loadEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer env.close()

			info, err := env.registry.FindByDir(dir)
			if err != nil {
				return err
			}
			if info == nil {
				return fmt.Errorf("directory %s is not a registered project", dir)
			}

			fmt.Printf("%s  local v%d", cyan(info.ID().FullName()), info.LocalVersion)
			if info.ServerVersion > info.LocalVersion {
				fmt.Printf("  (server at v%d, pull recommended)", info.ServerVersion)
			}
			fmt.Println()

			baseline := sync.ReadBaseline(dir)
			local, err := sync.IndexProject(dir)
			if err != nil {
				return err
			}

			// comparing the baseline against itself leaves only local changes
			diff := sync.Compare(baseline.Files, baseline.Files, local)
			if !diff.HasLocalChanges() {
				fmt.Println(green("No local changes"))
				return nil
			}

			printPaths := func(label string, paths []string) {
				for _, path := range paths {
					fmt.Printf("  %s  %s\n", label, path)
				}
			}
			printPaths(green("added  "), diff.LocalAdded)
			printPaths(cyan("changed"), diff.LocalUpdated)
			printPaths(red("removed"), diff.LocalDeleted)
			return nil
		},
	}
}
