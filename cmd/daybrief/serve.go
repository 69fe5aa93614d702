package main

import (
	"github.com/spf13/cobra"

	srv "github.com/mohammad-safakhou/daybrief/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server and cron scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			defer a.tele.Shutdown()

			return srv.Run(srv.Deps{Config: a.cfg, Orch: a.orch, Rdb: a.rdb})
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cmd
}
