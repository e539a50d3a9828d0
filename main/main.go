// Command nmie computes light scattering by multilayered spheres.
//
//	$ nmie example-config > particle.ini
//	$ nmie run particle.ini
//	$ nmie spectra particle.ini
package main

import (
	"context"
	"fmt"
	stdio "io"
	"math"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phil-mansfield/nmie"
	"github.com/phil-mansfield/nmie/io"
	"github.com/phil-mansfield/nmie/plot"
	"github.com/phil-mansfield/nmie/store"
)

var (
	verbose    bool
	cpuProfile string
	runLabel   string
	spectrumID string

	logger = zap.NewNop()
	prof   *os.File
)

var rootCmd = &cobra.Command{
	Use:   "nmie",
	Short: "Mie scattering by multilayered spheres",
	Long: `nmie computes the far-field efficiencies, scattering amplitudes and
near fields of a multilayered sphere illuminated by a plane wave.

Every command except example-config and runs reads a configuration file.
Run 'nmie example-config' to see every accepted parameter.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cpuProfile != "" {
			if prof, err = os.Create(cpuProfile); err != nil {
				return err
			}
			return pprof.StartCPUProfile(prof)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if prof != nil {
			pprof.StopCPUProfile()
			if err := prof.Close(); err != nil {
				logger.Error("closing profile", zap.Error(err))
			}
		}
		_ = logger.Sync()
	},
}

var exampleConfigCmd = &cobra.Command{
	Use:   "example-config",
	Short: "Print an example configuration file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), io.ExampleMieFile)
	},
}

var runCmd = &cobra.Command{
	Use:   "run config.ini",
	Short: "Compute efficiencies at the configured wavelength",
	Long: `Computes Qext, Qsca, Qabs, Qbk, Qpr, g and the albedo and writes them
as yaml to Output (stdout by default).`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var patternCmd = &cobra.Command{
	Use:   "pattern config.ini",
	Short: "Compute S1, S2 and the scattering patterns",
	Long: `Computes the scattering amplitudes and patterns at ThetaSamples
angles between ThetaMin and ThetaMax. If Plot is set, the patterns are also
drawn to that file.`,
	Args: cobra.ExactArgs(1),
	RunE: runPattern,
}

var spectraCmd = &cobra.Command{
	Use:   "spectra config.ini",
	Short: "Sweep the efficiencies over wavelength or size parameter",
	Long: `Computes SpectrumSamples points between SpectrumMin and SpectrumMax.
Layers with dispersive materials are re-evaluated at every wavelength.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpectra,
}

var fieldCmd = &cobra.Command{
	Use:   "field config.ini",
	Short: "Compute E and H at the configured points",
	Args:  cobra.ExactArgs(1),
	RunE:  runField,
}

var runsCmd = &cobra.Command{
	Use:   "runs database",
	Short: "List stored runs and spectra",
	Long: `Lists the runs and spectra stored in a database. With --spectrum,
writes the rows of one stored spectrum instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every sample of a sweep.")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "",
		"Write a CPU profile to this file.")
	runsCmd.Flags().StringVar(&runLabel, "label", "",
		"Only list records with this label.")
	runsCmd.Flags().StringVar(&spectrumID, "spectrum", "",
		"ID of a stored spectrum to print.")

	rootCmd.AddCommand(exampleConfigCmd, runCmd, patternCmd, spectraCmd,
		fieldCmd, runsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// readConfig reads the configuration file and builds the configuration at
// its wavelength.
func readConfig(fname string) (*io.MieWrapper, *nmie.Config, error) {
	wrap, err := io.ReadConfig(fname)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", fname, err)
	}
	cfg, err := wrap.Config()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("read configuration",
		zap.String("file", fname),
		zap.Float64("wavelength", cfg.Wavelength()),
		zap.Int("layers", cfg.LayerCount()),
		zap.Float64("radius", cfg.TotalRadius()))
	return wrap, cfg, nil
}

// output runs write on the Output file, or on the command's writer if it is
// not set.
func output(cmd *cobra.Command, con *io.MieConfig, write func(stdio.Writer) error) error {
	if con.Output == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(con.Output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func openStore(con *io.MieConfig) (*store.DB, bool, error) {
	if !con.ValidDatabase() {
		return nil, false, nil
	}
	db, err := store.Open(con.Database)
	return db, err == nil, err
}

func runRun(cmd *cobra.Command, args []string) error {
	wrap, cfg, err := readConfig(args[0])
	if err != nil {
		return err
	}
	res, err := cfg.Compute()
	if err != nil {
		return err
	}
	logger.Info("computed",
		zap.Float64("x", res.SizeParameter()),
		zap.Int("terms", res.Terms()),
		zap.Float64("Qext", res.Qext()))

	db, ok, err := openStore(&wrap.Mie)
	if err != nil {
		return err
	} else if ok {
		defer db.Close()
		id, err := db.SaveRun(cmd.Context(), res, wrap.Mie.Label)
		if err != nil {
			return err
		}
		logger.Info("stored run", zap.String("id", id.String()),
			zap.String("database", wrap.Mie.Database))
	}

	return output(cmd, &wrap.Mie, func(w stdio.Writer) error {
		return io.WriteSummary(w, res)
	})
}

func runPattern(cmd *cobra.Command, args []string) error {
	wrap, cfg, err := readConfig(args[0])
	if err != nil {
		return err
	}
	if wrap.Mie.ThetaSamples == 0 {
		return fmt.Errorf("'ThetaSamples' must be set for the pattern command")
	}
	res, err := cfg.Compute()
	if err != nil {
		return err
	}

	err = output(cmd, &wrap.Mie, func(w stdio.Writer) error {
		return io.WritePattern(w, res)
	})
	if err != nil {
		return err
	}

	if wrap.Mie.ValidPlot() {
		if err := plot.Pattern(res, wrap.Mie.Plot); err != nil {
			return err
		}
		plot.Execute()
	}
	return nil
}

func runSpectra(cmd *cobra.Command, args []string) error {
	wrap, cfg, err := readConfig(args[0])
	if err != nil {
		return err
	}
	con := &wrap.Mie
	if !con.ValidSpectrum() {
		return fmt.Errorf(
			"Invalid spectrum range [%g, %g] with %d samples.",
			con.SpectrumMin, con.SpectrumMax, con.SpectrumSamples,
		)
	}

	axis, err := nmie.Span(con.SpectrumMin, con.SpectrumMax, con.SpectrumSamples)
	if err != nil {
		return err
	}
	wls := axis
	storeAxis := store.WavelengthAxis
	if con.SizeParameterAxis {
		storeAxis = store.SizeParameterAxis
		wls = make([]float64, len(axis))
		for i, x := range axis {
			wls[i] = 2 * math.Pi * cfg.TotalRadius() / x
		}
	}

	results, err := nmie.Sweep(cmd.Context(), wls, wrap.Builder(),
		nmie.Workers(con.Workers), nmie.Logger(logger))
	if err != nil {
		return err
	}
	rows := make([]nmie.SpectrumRow, len(results))
	for i, r := range results {
		rows[i] = nmie.SpectrumRow{axis[i], r.Qext(), r.Qsca(), r.Qabs(), r.Qbk()}
	}

	db, ok, err := openStore(con)
	if err != nil {
		return err
	} else if ok {
		defer db.Close()
		id, err := db.SaveSpectrum(cmd.Context(), cfg, con.Label, storeAxis, rows)
		if err != nil {
			return err
		}
		logger.Info("stored spectrum", zap.String("id", id.String()),
			zap.String("database", con.Database))
	}

	err = output(cmd, con, func(w stdio.Writer) error {
		return io.WriteSpectrum(w, rows, con.SizeParameterAxis)
	})
	if err != nil {
		return err
	}

	if con.ValidPlot() {
		plot.Spectrum(rows, con.SizeParameterAxis, con.Plot)
		plot.Execute()
	}
	return nil
}

func runField(cmd *cobra.Command, args []string) error {
	wrap, cfg, err := readConfig(args[0])
	if err != nil {
		return err
	}
	if len(cfg.FieldPoints()) == 0 {
		return fmt.Errorf("Need to specify at least one Point or a [Grid].")
	}
	res, err := cfg.Compute()
	if err != nil {
		return err
	}
	fr, err := res.Field()
	if err != nil {
		return err
	}
	logger.Info("computed field", zap.Int("points", len(cfg.FieldPoints())))

	err = output(cmd, &wrap.Mie, func(w stdio.Writer) error {
		return io.WriteField(w, fr)
	})
	if err != nil {
		return err
	}

	if wrap.Mie.ValidPlot() {
		if err := plot.Field(fr, wrap.Mie.Plot); err != nil {
			return err
		}
		plot.Execute()
	}
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := store.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()
	out := cmd.OutOrStdout()

	if spectrumID != "" {
		id, err := uuid.Parse(spectrumID)
		if err != nil {
			return err
		}
		sp, rows, err := db.LoadSpectrum(cmd.Context(), id)
		if err != nil {
			return err
		}
		return io.WriteSpectrum(out, rows, sp.Axis == store.SizeParameterAxis)
	}

	runs, err := db.Runs(cmd.Context(), runLabel)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %d runs\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(out, "%s %s %-12s wl=%.6g x=%.6g Qext=%.6g Qsca=%.6g Qabs=%.6g\n",
			r.ID, r.CreatedAt, r.Label, r.Wavelength, r.SizeParameter,
			r.Qext, r.Qsca, r.Qabs)
	}

	spectra, err := db.Spectra(cmd.Context(), runLabel)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %d spectra\n", len(spectra))
	for _, s := range spectra {
		fmt.Fprintf(out, "%s %s %-12s axis=%s samples=%d\n",
			s.ID, s.CreatedAt, s.Label, s.Axis, s.Samples)
	}
	return nil
}
