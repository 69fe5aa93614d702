package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/daybrief/internal/agent/core"
)

func notesCMD() *cobra.Command {
	var cfgPath string
	var title string
	cmd := &cobra.Command{
		Use:   "notes [transcript-file]",
		Short: "Generate meeting notes from a transcript file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading transcript: %w", err)
			}

			ctx := cmd.Context()
			a, err := buildApp(ctx, cfgPath)
			if err != nil {
				return err
			}
			defer a.tele.Shutdown()

			note := a.orch.ProcessTranscript(ctx, string(transcript), core.MeetingRecord{Title: title})
			return json.NewEncoder(os.Stdout).Encode(note)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "meeting title")
	return cmd
}
