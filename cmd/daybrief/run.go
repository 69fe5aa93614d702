package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func runCMD() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daily workflow once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, cfgPath)
			if err != nil {
				return err
			}
			defer a.tele.Shutdown()

			report, err := a.orch.RunDailyWorkflow(ctx)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(report)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cmd
}
