package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/raptorfin/rtms/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "rtms",
	Short:         "Daily broker trade-confirm reconciliation",
	Long:          "rtms reconciles the broker's daily trade-confirmation feed into logical trades:\nfill lines are classified against reference data, merged per broker order id\ninto orders with volume-weighted prices, and attached to open positions.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	return logger, nil
}
