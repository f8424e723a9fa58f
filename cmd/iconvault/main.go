package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esimov/iconvault"
	"github.com/esimov/iconvault/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const HelpBanner = `
┬┌─┐┌─┐┌┐┌┬  ┬┌─┐┬ ┬┬  ┌┬┐
││  │ ││││└┐┌┘├─┤│ ││   │
┴└─┘└─┘┘└┘ └┘ ┴ ┴└─┘┴─┘ ┴

Icon asset pipeline.
    Version: %s
`

// Version indicates the current build version.
var Version string

// app carries the state shared by every sub-command.
type app struct {
	v *viper.Viper

	configFile string
	verbose    bool
	noProgress bool

	stdout io.Writer
	stderr io.Writer

	cfg    iconvault.Config
	logger zerolog.Logger
	// spinner is nil when the progress indicator is disabled.
	spinner *utils.Spinner
}

func main() {
	a := newApp(os.Stdout, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		if a.spinner != nil {
			a.spinner.RestoreCursor()
		}
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText("Error:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.Nop(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "iconvault",
		Short:         "Optimize, render, compress and publish svg icons",
		Long:          fmt.Sprintf(HelpBanner, Version),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (default ./iconvault.yaml)")
	flags.String("root", ".", "Project root the relative paths are resolved against")
	flags.Int("workers", 0, "Number of concurrently running jobs (0 uses the number of CPUs)")
	flags.Bool("track-size", false, "Log the file size before and after every job")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")
	flags.BoolVar(&a.noProgress, "no-progress", false, "Disable the progress indicator")

	a.v.BindPFlag("project_root", flags.Lookup("root"))
	a.v.BindPFlag("workers", flags.Lookup("workers"))
	a.v.BindPFlag("track_size", flags.Lookup("track-size"))

	root.AddCommand(
		a.listCmd(),
		a.stageCmd(iconvault.StageOptimize, "Optimize every svg in place with svgo"),
		a.stageCmd(iconvault.StageRasterize, "Render every svg into png files of the configured sizes"),
		a.stageCmd(iconvault.StageQuantize, "Compress the rendered png files with pngquant"),
		a.stageCmd(iconvault.StageUpload, "Upload the icons to the bucket and rewrite the index"),
		a.publishCmd(),
		a.indexCmd(),
		a.importCmd(),
		a.compressCmd(),
		a.readmeCmd(),
		a.configCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := loadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}

	f, isFile := a.stderr.(*os.File)
	if !a.noProgress && isFile && utils.IsTerminal(f) {
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ ICONVAULT", utils.StatusMessage),
			utils.DecorateText("is starting...", utils.DefaultMessage))
		a.spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)
		// Keep the job lines from breaking the spinner unless asked for.
		if !a.verbose {
			level = zerolog.WarnLevel
		}
	}

	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}
