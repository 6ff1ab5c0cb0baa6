package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	phconvert "github.com/photon-hdf5/phconvert_go/pkg"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.pt3> [file2.pt3 ...]",
	Short: "Convert pt3 files to Photon-HDF5",
	Long: `Convert decodes PicoHarp 300 T3-mode files and writes them out as
Photon-HDF5. With one input file the output name can be set with --out;
with several inputs each output name is derived by replacing the extension
with .hdf5 and the files are converted in parallel on --workers workers.
Without arguments the input and output paths come from the configuration
file (file_in, file_out).`,
	Args: cobra.ArbitraryArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("out", "o", "", "output filename (single input only)")
	convertCmd.Flags().String("setup", "", "name of a setup preset from the catalog")
	convertCmd.Flags().Bool("keep-overflow", false, "keep overflow and marker records in the output")
	convertCmd.Flags().Bool("drop-invalid-user", false, "drop unserializable user metadata instead of failing")
	convertCmd.Flags().Bool("force", false, "overwrite existing output files")
	convertCmd.Flags().Int("max-records", 0, "read at most this many records per file (0 = all)")
	convertCmd.Flags().Int("workers", 0, "number of parallel conversions (0 = configuration value)")
	convertCmd.Flags().Bool("log-catalog", false, "record each conversion in the catalog")
}

func outputName(fileIn string) string {
	if ext := ".pt3"; strings.HasSuffix(strings.ToLower(fileIn), ext) {
		return fileIn[:len(fileIn)-len(ext)] + ".hdf5"
	}
	return fileIn + ".hdf5"
}

func runConvert(cmd *cobra.Command, args []string) error {
	config := phconvert.GetConfiguration()

	if keep, _ := cmd.Flags().GetBool("keep-overflow"); keep {
		config.KeepOverflow = true
	}
	if drop, _ := cmd.Flags().GetBool("drop-invalid-user"); drop {
		config.DropInvalidUser = true
	}
	if maxRecords, _ := cmd.Flags().GetInt("max-records"); maxRecords > 0 {
		config.MaxRecords = maxRecords
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		config.NumWorkers = workers
	}

	setupName, _ := cmd.Flags().GetString("setup")
	logCatalog, _ := cmd.Flags().GetBool("log-catalog")

	var catalog *phconvert.Catalog
	if setupName != "" || logCatalog {
		var err error
		catalog, err = phconvert.OpenCatalog(config.CatalogDriver, catalogDSN(config))
		if err != nil {
			return err
		}
		defer catalog.Close()
	}
	if setupName != "" {
		preset, err := catalog.GetSetup(setupName)
		if err != nil {
			return err
		}
		config.Setup = preset
		config.SetupName = setupName
	}
	phconvert.SetConfiguration(config)

	out, _ := cmd.Flags().GetString("out")
	if out != "" && len(args) > 1 {
		return fmt.Errorf("--out only applies to a single input file")
	}
	if len(args) == 0 {
		if config.FileIn == "" {
			return fmt.Errorf("no input files: pass them as arguments or set file_in in the configuration")
		}
		args = []string{config.FileIn}
		if out == "" {
			out = config.FileOut
		}
	}

	jobs := make([]phconvert.ConvertJob, 0, len(args))
	for _, fileIn := range args {
		fileOut := outputName(fileIn)
		if out != "" {
			fileOut = out
		}
		jobs = append(jobs, phconvert.ConvertJob{FileIn: fileIn, FileOut: fileOut})
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		for _, job := range jobs {
			if _, err := os.Stat(job.FileOut); err == nil {
				return fmt.Errorf("output file %q already exists, use --force to overwrite", job.FileOut)
			}
		}
	}

	var results []phconvert.ConvertResult
	if len(jobs) == 1 {
		result, err := phconvert.ConvertFile(jobs[0].FileIn, jobs[0].FileOut)
		if err != nil {
			return err
		}
		results = append(results, result)
	} else {
		results = phconvert.ConvertAll(jobs)
	}

	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", result.Job.FileIn, result.Error)
			continue
		}
		fmt.Printf("%s -> %s (%d photons, %d records dropped)\n",
			result.Job.FileIn, result.Job.FileOut, result.Photons, result.Dropped)
		if logCatalog {
			entry := phconvert.ConversionEntry{
				FileIn:    result.Job.FileIn,
				FileOut:   result.Job.FileOut,
				Photons:   int64(result.Photons),
				Dropped:   int64(result.Dropped),
				SetupName: config.Setup.Name,
			}
			if _, err := catalog.LogConversion(entry); err != nil {
				fmt.Fprintln(os.Stderr, "Error updating conversion log:", err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(results))
	}
	return nil
}

// catalogDSN falls back to a per-user sqlite file when no DSN is configured.
func catalogDSN(config phconvert.Configuration) string {
	if config.CatalogDSN != "" {
		return config.CatalogDSN
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "phconvert-catalog.db"
	}
	return home + "/.config/phconvert/catalog.db"
}
