package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tripgraph"
)

func newGraphCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the planning graph as a Mermaid flowchart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}

			tg, err := tripgraph.NewFromConfig(cfg, tripgraph.Deps{Logger: logger})
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), tg.Graph().Mermaid())
			return err
		},
	}
}
