package main

import (
	"fmt"

	"github.com/spf13/cobra"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

var alternationCmd = &cobra.Command{
	Use:   "alternation <file.hdf5>",
	Short: "Analyze the laser alternation windows of a converted file",
	Long: `Alternation bins the photon nanotimes over the full TCSPC range and
classifies each photon against the donor and acceptor excitation windows of
the configured setup. The histogram can be written as a plot image (--plot)
or as an interactive HTML report (--report).`,
	Args: cobra.ExactArgs(1),
	RunE: runAlternation,
}

func init() {
	rootCmd.AddCommand(alternationCmd)

	alternationCmd.Flags().Int("bins", 256, "number of histogram bins")
	alternationCmd.Flags().String("plot", "", "write the histogram plot to this image file")
	alternationCmd.Flags().String("report", "", "write an interactive HTML report to this file")
}

func runAlternation(cmd *cobra.Command, args []string) error {
	pf, err := phconvert.OpenPhotonHDF5(args[0])
	if err != nil {
		return err
	}
	defer pf.Close()

	photons, err := pf.LoadPhotonData()
	if err != nil {
		return err
	}

	setup := phconvert.GetConfiguration().Setup
	bins, _ := cmd.Flags().GetInt("bins")

	hist, err := phconvert.NewAlternationHistogram(photons, setup, bins)
	if err != nil {
		return err
	}

	donor, acceptor, unclassified := phconvert.CountWindows(photons, setup)
	fmt.Printf("Photons: %d\n", photons.Len())
	fmt.Printf("Donor window [%d, %d): %d photons (%.1f%%)\n",
		setup.DonorStart, setup.DonorStop, donor, 100*hist.DonorFraction())
	fmt.Printf("Acceptor window [%d, %d): %d photons (%.1f%%)\n",
		setup.AcceptorStart, setup.AcceptorStop, acceptor, 100*hist.AcceptorFraction())
	fmt.Printf("Unclassified: %d photons\n", unclassified)

	if plotFile, _ := cmd.Flags().GetString("plot"); plotFile != "" {
		if err := hist.SavePlot(plotFile); err != nil {
			return err
		}
		fmt.Println("Plot written to", plotFile)
	}
	if reportFile, _ := cmd.Flags().GetString("report"); reportFile != "" {
		if err := hist.WriteReport(reportFile); err != nil {
			return err
		}
		fmt.Println("Report written to", reportFile)
	}
	return nil
}
