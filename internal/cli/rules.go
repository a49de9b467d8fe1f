package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule tables as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rs, _, closer, err := loadEnvironment(*configPath)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			data, err := json.MarshalIndent(rs, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding rule tables: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
