package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	appinspection "github.com/bryanwahyu/archscope/internal/application/inspection"
	"github.com/bryanwahyu/archscope/internal/application/session"
	"github.com/bryanwahyu/archscope/internal/config"
	"github.com/bryanwahyu/archscope/internal/domain/ai"
	"github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/domain/stages"
	"github.com/bryanwahyu/archscope/internal/infra/ai/provider"
	"github.com/bryanwahyu/archscope/internal/infra/report"
	"github.com/bryanwahyu/archscope/internal/logger"
)

const errorHint = "Please make sure your API key is valid and the image is clear and properly formatted."

type options struct {
	configPath      string
	image           string
	stage           string
	depth           int
	safety          bool
	recommendations bool
	out             string
	listStages      bool
}

// clientFactory is swapped in tests.
var clientFactory = func(cmd *cobra.Command, cfg *config.Config) (ai.Client, error) {
	return provider.New(cmd.Context(), cfg)
}

func newRootCmd() *cobra.Command {
	def := inspection.DefaultOptions()
	opts := options{
		configPath:      "config.yaml",
		depth:           def.Depth,
		safety:          def.SafetyPrioritized,
		recommendations: def.IncludeRecommendations,
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		opts.configPath = v
	}

	cmd := &cobra.Command{
		Use:           "archscope",
		Short:         "Analyze a construction photo with a vision model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.listStages {
				for _, n := range stages.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}
			err := run(cmd, opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error during analysis: %v\n", err)
				fmt.Fprintln(cmd.ErrOrStderr(), errorHint)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", opts.configPath, "path to config.yaml")
	f.StringVarP(&opts.image, "image", "i", "", "photo to analyze (jpg, jpeg or png)")
	f.StringVarP(&opts.stage, "stage", "s", stages.FoundationSitework, "construction stage")
	f.IntVarP(&opts.depth, "depth", "d", opts.depth, "analysis depth, 1 to 5")
	f.BoolVar(&opts.safety, "safety", opts.safety, "prioritize safety issues")
	f.BoolVar(&opts.recommendations, "recommendations", opts.recommendations, "include remediation recommendations")
	f.StringVarP(&opts.out, "out", "o", "", "directory to write the plain-text report to")
	f.BoolVar(&opts.listStages, "list-stages", false, "print the known stages and exit")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	if opts.image == "" {
		return fmt.Errorf("%w: --image is required", inspection.ErrValidation)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.NewWithWriter(cfg.Log.Env, cmd.ErrOrStderr())

	client, err := clientFactory(cmd, cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.image)
	if err != nil {
		return fmt.Errorf("%w: %v", inspection.ErrValidation, err)
	}
	defer f.Close()

	svc := appinspection.NewService(client, nil, cfg.AI.Timeout, log)
	out, err := svc.Analyze(cmd.Context(), session.NewState(uuid.NewString()), appinspection.AnalyzeCommand{
		Stage: opts.stage,
		Options: inspection.Options{
			Depth:                  opts.depth,
			IncludeRecommendations: opts.recommendations,
			SafetyPrioritized:      opts.safety,
		},
		ImageName: filepath.Base(opts.image),
		Image:     f,
	})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), report.Markdown(out.Result)); err != nil {
		return err
	}
	if opts.out == "" {
		return nil
	}
	path := filepath.Join(opts.out, out.DownloadName)
	if err := os.WriteFile(path, []byte(out.Entry.AnalysisText), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "report saved to %s\n", path)
	return nil
}
