package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"CryptoLiq/pkg/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the active model and the feature columns it is fed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return err
		}
		p, err := newPredictor(cfg)
		if err != nil {
			return err
		}
		s := p.Schema()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model: %s\n", s.Model)
		for i, c := range s.Columns {
			fmt.Fprintf(out, "%2d  %s\n", i+1, c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
