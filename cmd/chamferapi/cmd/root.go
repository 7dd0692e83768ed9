package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seemspyo/chamfer/cmd/chamferapi/cmd/keys"
	"github.com/seemspyo/chamfer/cmd/chamferapi/cmd/users"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "chamferapi",
	Short: "Chamfer content API server",
	Long: `Chamfer serves a GraphQL API for articles, products, banners, photos and
JSON documents, with cookie or header bearer authentication and role-based access.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("database-url", "", "Database connection URL (env: CHAMFER_DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: CHAMFER_SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: CHAMFER_DEBUG)")

	for key, flag := range map[string]string{
		"database_url": "database-url",
		"server_addr":  "server-addr",
		"debug":        "debug",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(keys.KeysCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
