package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "phconvert",
	Short: "Convert PicoQuant pt3 files to Photon-HDF5",
	Long: `phconvert converts PicoHarp 300 T3-mode data files (.pt3) into the
Photon-HDF5 format and works with the resulting files: inspect the layout,
validate against the 0.3 format rules, and analyze the laser alternation
windows. Instrument setup presets and the conversion log live in a local
sqlite catalog or a shared mysql server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := phconvert.DefaultConfiguration()
		if err := viper.Unmarshal(&config); err != nil {
			return fmt.Errorf("error reading configuration: %w", err)
		}
		if verbosity, err := cmd.Flags().GetInt("verbosity"); err == nil && cmd.Flags().Changed("verbosity") {
			config.Verbosity = verbosity
		}
		phconvert.SetConfiguration(config)
		phconvert.SetLogger(newCLILogger())
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./phconvert.yaml or ~/.config/phconvert/config.yaml)")
	rootCmd.PersistentFlags().IntP("verbosity", "v", 0, "log verbosity (0 = quiet)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("phconvert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "phconvert"))
		}
	}

	viper.SetEnvPrefix("PHCONVERT")
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
