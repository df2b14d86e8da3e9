package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Index course scripts into the local store",
	Long:  `Parse course scripts from a folder and add them to the vector index. Courses already in the catalog are skipped unless --clear is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Docs.Path
		if len(args) == 1 {
			path = args[0]
		}

		system, closeStore, err := buildSystem(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		courses, chunks, err := system.IngestFolder(cmd.Context(), path, ingestClear)
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d course(s), %d chunk(s)\n", courses, chunks)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "wipe the index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}
