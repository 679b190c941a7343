package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	stmtfetch "github.com/porticus-lab/go-statement-fetch"
	"github.com/porticus-lab/go-statement-fetch/internal/archive"
	"github.com/porticus-lab/go-statement-fetch/internal/buildinfo"
	"github.com/porticus-lab/go-statement-fetch/internal/config"
	"github.com/porticus-lab/go-statement-fetch/internal/logging"
)

// newPortal starts the browser. Tests replace it.
var newPortal = func(opts ...stmtfetch.Option) (stmtfetch.Portal, error) {
	return stmtfetch.NewSession(opts...)
}

type rootFlags struct {
	envFile      string
	out          string
	headless     bool
	timeout      time.Duration
	settle       time.Duration
	chrome       string
	autoDownload bool
	noSandbox    bool
	s3Bucket     string
	s3Prefix     string
	logLevel     string
	logFormat    string
}

// NewRootCommand creates the stmtfetch command. It runs one fetch.
func NewRootCommand() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "stmtfetch",
		Short: "Download the last year of billing statements from the energy portal",
		Long: `stmtfetch logs in to the provider portal, lists every billing statement
and saves the PDFs whose period lies in the last twelve months under
"<out>/<Y>-<M>-<D>/". Credentials come from LOGIN_USERNAME and
LOGIN_PASSWORD, read from the environment or the .env file.`,
		Version: buildinfo.String(),
		Args:    cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "settings file read before the environment")
	fs.StringVarP(&f.out, "out", "o", stmtfetch.DefaultOutputRoot, "root directory for saved statements")
	fs.BoolVar(&f.headless, "headless", false, "run the browser without a window")
	fs.DurationVar(&f.timeout, "timeout", 10*time.Minute, "limit for each browser step")
	fs.DurationVar(&f.settle, "settle", 5*time.Second, "pause after expanding the statement table")
	fs.StringVar(&f.chrome, "chrome", "", "path to the Chrome/Chromium executable")
	fs.BoolVar(&f.autoDownload, "auto-download", false, "download a Chromium build when none is installed")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (containers)")
	fs.StringVar(&f.s3Bucket, "s3-bucket", "", "mirror saved statements to this S3 bucket")
	fs.StringVar(&f.s3Prefix, "s3-prefix", "", "key prefix inside the S3 bucket")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "console", "console or json")

	return cmd
}

// applyFlags overrides cfg with the flags the user set explicitly.
func applyFlags(fs *pflag.FlagSet, f *rootFlags, cfg *config.Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("out", func() { cfg.OutputDir = f.out })
	set("headless", func() { cfg.Headless = f.headless })
	set("timeout", func() { cfg.Timeout = f.timeout })
	set("settle", func() { cfg.SettleDelay = f.settle })
	set("chrome", func() { cfg.ChromePath = f.chrome })
	set("auto-download", func() { cfg.AutoDownloadBrowser = f.autoDownload })
	set("no-sandbox", func() { cfg.NoSandbox = f.noSandbox })
	set("s3-bucket", func() { cfg.S3Bucket = f.s3Bucket })
	set("s3-prefix", func() { cfg.S3Prefix = f.s3Prefix })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("log-format", func() { cfg.LogFormat = f.logFormat })
}

func run(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	var archiver stmtfetch.Archiver
	if cfg.S3Bucket != "" {
		a, err := archive.NewS3(ctx, archive.S3Config{
			Bucket:  cfg.S3Bucket,
			Prefix:  cfg.S3Prefix,
			Profile: cfg.AWSProfile,
			Region:  cfg.AWSRegion,
		})
		if err != nil {
			return err
		}
		archiver = a
	}

	portal, err := newPortal(cfg.SessionOptions()...)
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}

	fetcher := &stmtfetch.Fetcher{
		Portal:      portal,
		Credentials: cfg.Credentials(),
		OutputRoot:  cfg.OutputDir,
		Archiver:    archiver,
	}
	report, err := fetcher.Run(ctx)
	if report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "saved %d of %d statements to %s\n",
			len(report.Saved), report.Rows, report.Dir)
	}
	return err
}
