package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merginmaps/mergin-go/internal/mergin"
	"github.com/merginmaps/mergin-go/internal/sync"
)

func init() {
	projectCmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects on the server",
	}
	projectCmd.AddCommand(newProjectListCmd())
	projectCmd.AddCommand(newProjectCreateCmd())
	projectCmd.AddCommand(newProjectDeleteCmd())
	rootCmd.AddCommand(projectCmd)
}

func newProjectListCmd() *cobra.Command {
	var params mergin.ListProjectsParams

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects visible to the logged-in user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			projects, err := env.client.ListProjects(cmd.Context(), &params)
			if err != nil {
				return err
			}

			for _, p := range projects {
				id := sync.ProjectID{Namespace: p.Namespace, Name: p.Name}
				serverVersion := mergin.ParseVersionLabel(p.Version)

				local, err := env.registry.FindByName(id)
				if err != nil {
					return err
				}

				state := "remote only"
				if local != nil {
					// remember what the server is at so status can tell a
					// stale checkout apart from a current one
					if err := env.registry.SetServerVersion(id, serverVersion); err != nil {
						return err
					}
					if local.LocalVersion == serverVersion {
						state = green("up to date")
					} else {
						state = cyan(fmt.Sprintf("local v%d", local.LocalVersion))
					}
				}

				fmt.Printf("%-40s  v%-5d  %s\n", id.FullName(), serverVersion, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Tags, "tags", "", "filter by tags")
	cmd.Flags().StringVarP(&params.Search, "search", "q", "", "filter by name")
	cmd.Flags().StringVar(&params.Flag, "flag", "", "access filter, e.g. created or shared")
	cmd.Flags().StringVar(&params.User, "user", "", "user the access filter applies to")
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAMESPACE/NAME",
		Short: "Create a new project on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sync.ParseProjectID(args[0])
			if err != nil {
				return err
			}

			env, err := loadEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.client.CreateProject(cmd.Context(), id.Namespace, id.Name); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", green("created"), id)
			return nil
		},
	}
}

func newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAMESPACE/NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a project from the server",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sync.ParseProjectID(args[0])
			if err != nil {
				return err
			}

			env, err := loadEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.client.DeleteProject(cmd.Context(), id.Namespace, id.Name); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", red("deleted"), id)
			return nil
		},
	}
}
