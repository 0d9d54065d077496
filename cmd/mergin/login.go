package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/merginmaps/mergin-go/internal/config"
)

func init() {
	rootCmd.AddCommand(newLoginCmd())
}

func newLoginCmd() *cobra.Command {
	var password string
	var apiRoot string

	cmd := &cobra.Command{
		Use:   "login [USERNAME]",
		Short: "Log in to a Mergin server and store the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiRoot != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg.APIRoot = strings.TrimSuffix(apiRoot, "/")
				if err := cfg.Save(); err != nil {
					return err
				}
			}

			env, err := loadEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.client.CheckVersion(cmd.Context()); err != nil {
				return err
			}

			username := env.cfg.Username
			if len(args) > 0 {
				username = args[0]
			}

			reader := bufio.NewReader(os.Stdin)
			if username == "" {
				fmt.Print("Username: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Print("Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			if err := env.client.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			auth := env.client.Auth()
			fmt.Printf("%s as %s on %s\n", green("Logged in"), cyan(auth.Username), env.cfg.APIRoot)
			if auth.StorageLimit > 0 {
				fmt.Printf("Storage: %s of %s used\n",
					humanize.Bytes(uint64(auth.DiskUsage)), humanize.Bytes(uint64(auth.StorageLimit)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVarP(&apiRoot, "url", "u", "", "Mergin server URL (persisted for later commands)")
	return cmd
}
