package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/esimov/iconvault"
	"github.com/esimov/iconvault/storage"
	"github.com/esimov/iconvault/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// svgMimeType is the content type accepted when importing from an url.
const svgMimeType = "image/svg+xml"

func (a *app) catalog() *iconvault.Catalog {
	return iconvault.NewCatalog(a.cfg.Resolve(a.cfg.CatalogDir), a.cfg.DescriptionName)
}

// pipeline builds a pipeline, opening the bucket only when the upload stage is requested.
func (a *app) pipeline(stages []iconvault.Stage) (*iconvault.Pipeline, error) {
	var bucket storage.Bucket
	for _, s := range stages {
		if s == iconvault.StageUpload {
			b, err := newBucket(a.cfg)
			if err != nil {
				return nil, err
			}
			bucket = b
		}
	}
	return iconvault.NewPipeline(a.cfg, bucket, a.logger)
}

// runStages executes the given stages and prints the run summary.
func (a *app) runStages(ctx context.Context, stages ...iconvault.Stage) error {
	if len(stages) == 0 {
		stages = iconvault.AllStages
	}
	p, err := a.pipeline(stages)
	if err != nil {
		return err
	}

	if a.spinner != nil {
		p.OnStage = func(stage iconvault.Stage, jobs int) {
			a.spinner.SetMessage(fmt.Sprintf("%s %s",
				utils.DecorateText("⚡ ICONVAULT", utils.StatusMessage),
				utils.DecorateText(fmt.Sprintf("%s: %d jobs...", stage, jobs), utils.DefaultMessage)))
			a.spinner.Start()
		}
	}

	now := time.Now()
	summary, err := p.Run(ctx, stages...)

	if a.spinner != nil {
		if err == nil {
			a.spinner.StopMsg = fmt.Sprintf("%s %s\n",
				utils.DecorateText("⚡ ICONVAULT", utils.StatusMessage),
				utils.DecorateText("is done ✔", utils.DefaultMessage))
		}
		a.spinner.Stop()
	}
	if summary != nil {
		a.printSummary(summary)
	}
	fmt.Fprintf(a.stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return err
}

func (a *app) printSummary(s *iconvault.Summary) {
	fmt.Fprintf(a.stdout, "Run %s over %d icons\n", s.RunID, s.Assets)
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, st := range s.Stages {
		fmt.Fprintf(w, "  %s\t%d jobs\t%s\n", st.Stage, st.Jobs, utils.FormatTime(st.Elapsed))
	}
	w.Flush()
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the icons of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, asset := range a.catalog().ListAll() {
				desc, _, err := asset.Description()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", asset.Name, desc)
			}
			return w.Flush()
		},
	}
}

func (a *app) stageCmd(stage iconvault.Stage, short string) *cobra.Command {
	return &cobra.Command{
		Use:   stage.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStages(cmd.Context(), stage)
		},
	}
}

func (a *app) publishCmd() *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Run the whole pipeline, or the stages given with --stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := parseStages(names)
			if err != nil {
				return err
			}
			return a.runStages(cmd.Context(), stages...)
		},
	}
	cmd.Flags().StringSliceVar(&names, "stages", nil, "Comma separated stages to run: optimize,rasterize,quantize,upload")
	return cmd
}

func parseStages(names []string) ([]iconvault.Stage, error) {
	stages := make([]iconvault.Stage, 0, len(names))
	for _, name := range names {
		stage, err := iconvault.ParseStage(name)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func (a *app) indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rewrite the markdown index of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(nil)
			if err != nil {
				return err
			}
			if err := p.Index(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "The index has been saved as: %s\n", a.cfg.Resolve(a.cfg.IndexPath))
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file|dir|url>...",
		Short: "Move loose svg files into the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := a.catalog()
			for _, src := range args {
				assets, err := a.importOne(cmd.Context(), catalog, src, force)
				if err != nil {
					return err
				}
				for _, asset := range assets {
					fmt.Fprintf(a.stdout, "Imported %s as %s\n", asset.Name, asset.SVGPath())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace icons already in the catalog")
	return cmd
}

func (a *app) importOne(ctx context.Context, catalog *iconvault.Catalog, src string, force bool) ([]iconvault.IconAsset, error) {
	if utils.IsValidUrl(src) {
		tmp, err := os.MkdirTemp("", "iconvault")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(tmp)

		path, err := utils.DownloadFile(ctx, src, tmp, svgMimeType)
		if err != nil {
			return nil, err
		}
		asset, err := catalog.Import(path, force)
		if err != nil {
			return nil, err
		}
		return []iconvault.IconAsset{asset}, nil
	}

	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", iconvault.ErrSourceNotFound, err)
	}
	if fi.IsDir() {
		return catalog.ImportDir(src, force)
	}
	asset, err := catalog.Import(src, force)
	if err != nil {
		return nil, err
	}
	return []iconvault.IconAsset{asset}, nil
}

func (a *app) compressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress <in> <out>",
		Short: "Compress every png below <in> into the same layout under <out>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(nil)
			if err != nil {
				return err
			}
			if a.spinner != nil {
				p.OnStage = func(_ iconvault.Stage, jobs int) {
					a.spinner.SetMessage(fmt.Sprintf("%s %s",
						utils.DecorateText("⚡ ICONVAULT", utils.StatusMessage),
						utils.DecorateText(fmt.Sprintf("compressing %d files...", jobs), utils.DefaultMessage)))
					a.spinner.Start()
				}
			}

			now := time.Now()
			outcomes, err := p.Compress(cmd.Context(), args[0], args[1])
			if a.spinner != nil {
				a.spinner.Stop()
			}
			fmt.Fprintf(a.stdout, "Compressed %d files into %s\n", len(outcomes), args[1])
			fmt.Fprintf(a.stderr, "\nExecution time: %s\n",
				utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
			return err
		},
	}
}

func (a *app) readmeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "readme",
		Short: "Create an empty description file for every icon lacking one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.catalog().EnsureDescriptions()
			for _, asset := range created {
				fmt.Fprintf(a.stdout, "Created %s\n", asset.DescriptionPath())
			}
			return err
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
