package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorgraph/pkg/engine"
)

func (a *app) identifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify <database> <dictionary-out>",
		Short: "Build the feature dictionary of a graph database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := engine.Identify(cmd.Context(), args[0], args[1], a.opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d features written to %s\n", dict.Len(), args[1])
			return nil
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <graphs> <dictionary> <matrix-out>",
		Short: "Encode graphs into a feature vector matrix",
		Long: `Encode every graph of a graph database file against a feature
dictionary. Rows follow the order of the file; run dedup first to encode a
deduplicated database.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return engine.Convert(cmd.Context(), args[0], args[1], args[2], a.opts)
		},
	}
}

func (a *app) matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <database-matrix> <query-matrix> <results-out>",
		Short: "List the candidate database graphs of every query",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return engine.MatchFiles(cmd.Context(), args[0], args[1], args[2], a.opts)
		},
	}
}

func (a *app) dedupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedup <database> <database-out>",
		Short: "Drop graphs whose invariant signature was already seen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kept, dropped, err := engine.DedupFile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d graphs kept, %d duplicates dropped\n", kept, dropped)
			return nil
		},
	}
}
