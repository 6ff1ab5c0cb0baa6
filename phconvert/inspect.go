package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.hdf5>",
	Short: "Print the layout and photon statistics of a Photon-HDF5 file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("attrs", false, "also print dataset attributes")
	inspectCmd.Flags().Bool("stats", false, "print photon arrival statistics")
}

func runInspect(cmd *cobra.Command, args []string) error {
	pf, err := phconvert.OpenPhotonHDF5(args[0])
	if err != nil {
		return err
	}
	defer pf.Close()

	for _, group := range []string{"/", "/photon_data", "/setup", "/identity", "/provenance", "/sample"} {
		if !pf.HasObject(group) {
			continue
		}
		fmt.Printf("\n%s\n", group)
		if err := pf.PrintChildren(os.Stdout, group); err != nil {
			return err
		}
	}

	if showAttrs, _ := cmd.Flags().GetBool("attrs"); showAttrs {
		fmt.Println()
		for _, path := range []string{
			"/photon_data/timestamps",
			"/photon_data/detectors",
			"/photon_data/nanotimes",
		} {
			if !pf.HasObject(path) {
				continue
			}
			if err := pf.PrintAttrs(os.Stdout, path); err != nil {
				return err
			}
		}
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		if err := printStats(pf); err != nil {
			return err
		}
	}
	return nil
}

func printStats(pf *phconvert.PhotonFile) error {
	timestamps, err := pf.ReadFloats("/photon_data/timestamps")
	if err != nil {
		return err
	}
	nanotimes, err := pf.ReadFloats("/photon_data/nanotimes")
	if err != nil {
		return err
	}
	unit, err := pf.ReadScalar("/photon_data/timestamps_specs/timestamps_unit")
	if err != nil {
		return err
	}

	fmt.Printf("\nPhotons: %d\n", len(timestamps))
	if len(timestamps) == 0 {
		return nil
	}

	duration := (timestamps[len(timestamps)-1] - timestamps[0]) * unit
	fmt.Printf("Time span: %.3f s\n", duration)
	if duration > 0 {
		fmt.Printf("Count rate: %.1f photons/s\n", float64(len(timestamps))/duration)
	}

	mean, std := stat.MeanStdDev(nanotimes, nil)
	fmt.Printf("Nanotime mean: %.1f bins, stddev: %.1f bins\n", mean, std)
	return nil
}
