// Command xgettext extracts translatable strings from Python, C, C++ and Go
// sources into gettext templates, one per domain.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "xgettext",
	Short: "Extract gettext messages from source code",
	Long: `xgettext scans source files for calls to gettext marker functions such as
gettext, _, N_, dgettext, ngettext and dngettext and writes the literal
strings it finds to a .pot template per domain.

Calls whose message arguments are not string literals are skipped, as are
calls inside comments. Use "xgettext extract --update" to merge the new
template into the existing translations of every locale.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetString("log-level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./xgettext.yaml or ~/.config/xgettext/xgettext.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringSliceP("keyword", "k", nil, "extra marker function as name or name:kind (kinds: simple, domain, plural, domain+plural)")
	rootCmd.PersistentFlags().String("markers", "", "yaml file with extra marker functions")

	for _, name := range []string{"log-level", "keyword", "markers"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("xgettext")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "xgettext"))
		}
	}

	viper.SetEnvPrefix("XGETTEXT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
