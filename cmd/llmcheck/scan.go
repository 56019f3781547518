package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/provider"
	"github.com/llmcheck/visibility/internal/scan"
)

func scanCMD() *cobra.Command {
	var targetURL string
	var industry string
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "scan",
		Short: "Run a one-off visibility scan and print the result matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			providers, err := provider.FromConfig(cfg.Providers)
			if err != nil {
				return err
			}
			logger := log.New(log.Writer(), "[SCAN] ", log.LstdFlags)
			orch, err := scan.NewOrchestrator(cfg.Scan, providers, logger)
			if err != nil {
				return err
			}

			out, err := orch.Run(context.Background(), scan.Query{TargetURL: targetURL, Industry: industry})
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s): %d/%d mentions\n\n", out.NormalizedURL, out.ScannedAt.Format("2006-01-02 15:04"), out.TotalFound, out.TotalQueries)
			for _, res := range out.Results {
				status := "miss"
				switch {
				case res.Error:
					status = "ERROR"
				case res.Found:
					status = "FOUND"
				}
				fmt.Printf("%-10s  %-5s  %s\n", res.Model, status, res.Prompt)
				if res.Snippet != "" {
					fmt.Printf("            %s\n", res.Snippet)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&targetURL, "url", "", "target url (required)")
	cmd.Flags().StringVar(&industry, "industry", "", "industry for the default prompt set")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file directory (default is .)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
