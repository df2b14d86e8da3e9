package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question about the indexed courses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		system, closeStore, err := buildSystem(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		question := strings.Join(args, " ")
		answer, sources, err := system.Query(cmd.Context(), question, "")
		if err != nil {
			return err
		}

		fmt.Println(answer)
		if len(sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range sources {
				if src.Link != "" {
					fmt.Printf("  - %s (%s)\n", src.Text, src.Link)
				} else {
					fmt.Printf("  - %s\n", src.Text)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
