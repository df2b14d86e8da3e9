package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/kouza/internal/config"
	"github.com/harunnryd/kouza/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kouza",
	Short: "Kouza course materials assistant",
	Long:  `Kouza answers questions about course materials using semantic search over indexed course scripts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kouza/config.yaml)")
	rootCmd.PersistentFlags().String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("server.port", config.DefaultServerPort, "server port")
	rootCmd.PersistentFlags().String("docs.path", config.DefaultDocsPath, "course scripts folder")
	rootCmd.PersistentFlags().String("store.path", "", "index directory (default is $HOME/.kouza/index)")
}
