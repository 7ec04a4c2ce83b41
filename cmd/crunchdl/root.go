package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/famomatic/crunchdl/client"
	"github.com/famomatic/crunchdl/internal/logging"
)

const version = "1.0.0"

// commandContext carries the state shared between subcommands: global
// flags, the loaded config and the console logger.
type commandContext struct {
	quiet      bool
	verbose    bool
	proxy      string
	userAgent  string
	configPath string

	logOut io.Writer
	log    zerolog.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{logOut: os.Stdout}

	rootCmd := &cobra.Command{
		Use:     "crunchdl",
		Version: version,
		Short:   "Download series and movies from the Crunchyroll catalog",

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.loadConfig(); err != nil {
				return err
			}
			ctx.log = logging.New(ctx.logOut, ctx.quiet, ctx.verbose)
			ctx.log.Debug().Str("command", cmd.Name()).Int("args", len(args)).Msg("executing command")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Disable all output")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Adds debug messages to the normal output")
	rootCmd.PersistentFlags().StringVarP(&ctx.proxy, "proxy", "p", "", "Proxy to use")
	rootCmd.PersistentFlags().StringVar(&ctx.userAgent, "useragent", fmt.Sprintf("crunchdl/%s", version), "Useragent to do all requests with")
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newInfoCommand(ctx))

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	return rootCmd
}

// loadConfig reads the optional config file and environment. File values
// only fill in flags the user left at their defaults.
func (c *commandContext) loadConfig() error {
	if c.configPath != "" {
		viper.SetConfigFile(c.configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/crunchdl")
		}
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CRUNCHDL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if c.proxy == "" {
		c.proxy = viper.GetString("proxy")
	}
	if ua := viper.GetString("user_agent"); ua != "" && c.userAgent == fmt.Sprintf("crunchdl/%s", version) {
		c.userAgent = ua
	}
	return nil
}

func (c *commandContext) newClient() *client.Client {
	return client.New(client.Config{
		BaseURL:        viper.GetString("base_url"),
		ProxyURL:       c.proxy,
		UserAgent:      c.userAgent,
		RequestTimeout: 30 * time.Second,
	})
}
