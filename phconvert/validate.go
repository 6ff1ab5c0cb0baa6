package main

import (
	"fmt"

	"github.com/spf13/cobra"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.hdf5> [file2.hdf5 ...]",
	Short: "Check files against the Photon-HDF5 0.3 layout rules",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("strict", false, "treat fields outside the official layout as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	strict := phconvert.GetConfiguration().Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}

	failed := 0
	for _, filename := range args {
		if err := phconvert.ValidateFile(filename, strict); err != nil {
			failed++
			fmt.Printf("INVALID %s\n%v\n", filename, err)
			continue
		}
		fmt.Printf("OK %s\n", filename)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files are invalid", failed, len(args))
	}
	return nil
}
