package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

var setupsCmd = &cobra.Command{
	Use:   "setups",
	Short: "Manage instrument setup presets in the catalog",
}

var setupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all setup presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog()
		if err != nil {
			return err
		}
		defer catalog.Close()

		presets, err := catalog.ListSetups()
		if err != nil {
			return err
		}
		for _, preset := range presets {
			fmt.Printf("%-24s %s  ch1=%d ch2=%d\n",
				preset.Name, preset.MeasurementType, preset.SpectralCh1, preset.SpectralCh2)
		}
		return nil
	},
}

var setupsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one setup preset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog()
		if err != nil {
			return err
		}
		defer catalog.Close()

		preset, err := catalog.GetSetup(args[0])
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(preset)
	},
}

var setupsSaveCmd = &cobra.Command{
	Use:   "save <preset.json>",
	Short: "Save a setup preset from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		preset := phconvert.DefaultSetup()
		if err := json.Unmarshal(data, &preset); err != nil {
			return fmt.Errorf("error parsing preset file %q: %w", args[0], err)
		}

		catalog, err := openCatalog()
		if err != nil {
			return err
		}
		defer catalog.Close()

		if err := catalog.SaveSetup(preset); err != nil {
			return err
		}
		fmt.Printf("Saved setup preset %q\n", preset.Name)
		return nil
	},
}

var conversionsCmd = &cobra.Command{
	Use:   "conversions",
	Short: "Print the conversion log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog()
		if err != nil {
			return err
		}
		defer catalog.Close()

		entries, err := catalog.ListConversions()
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf("%s  %s -> %s  photons=%d dropped=%d setup=%s\n",
				entry.CreatedAt.Format("2006-01-02 15:04:05"),
				entry.FileIn, entry.FileOut, entry.Photons, entry.Dropped, entry.SetupName)
		}
		return nil
	},
}

func init() {
	setupsCmd.AddCommand(setupsListCmd, setupsShowCmd, setupsSaveCmd)
	rootCmd.AddCommand(setupsCmd, conversionsCmd)
}

func openCatalog() (*phconvert.Catalog, error) {
	config := phconvert.GetConfiguration()
	return phconvert.OpenCatalog(config.CatalogDriver, catalogDSN(config))
}
