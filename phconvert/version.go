package main

import (
	"fmt"

	"github.com/spf13/cobra"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phconvert %s (Photon-HDF5 %s)\n", version, phconvert.FormatVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
