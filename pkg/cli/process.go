package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rosbache/multiImageTextOverlay/internal/batch"
	"github.com/rosbache/multiImageTextOverlay/internal/config"
	"github.com/rosbache/multiImageTextOverlay/internal/logger"
	"github.com/rosbache/multiImageTextOverlay/internal/metadata"
	"github.com/rosbache/multiImageTextOverlay/internal/overlay"
	"github.com/rosbache/multiImageTextOverlay/internal/progress"
	"github.com/rosbache/multiImageTextOverlay/internal/projection"
	"github.com/rosbache/multiImageTextOverlay/pkg/s3client"
)

func newProcessCommand(cfg *config.Config) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process all JPEG images in the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := applyConfigFile(configFile, cmd.Flags(), cfg); err != nil {
					return err
				}
			}
			return runProcess(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Optional config file; explicit flags take precedence")

	// I/O
	cmd.Flags().StringVarP(&cfg.Input, "input", "i", cfg.Input, "Input directory with JPEG images")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output directory for annotated copies")

	// Overlay appearance
	cmd.Flags().StringVar(&cfg.Overlay.Position, "position", cfg.Overlay.Position, "Text anchor corner (top-left, top-right, bottom-left, bottom-right)")
	cmd.Flags().StringVar(&cfg.Overlay.TextColor, "text-color", cfg.Overlay.TextColor, "Text color as R,G,B")
	cmd.Flags().StringVar(&cfg.Overlay.OutlineColor, "outline-color", cfg.Overlay.OutlineColor, "Outline color as R,G,B")
	cmd.Flags().IntVar(&cfg.Overlay.OutlineWidth, "outline-width", cfg.Overlay.OutlineWidth, "Outline stroke width in pixels")
	cmd.Flags().StringVar(&cfg.Overlay.FontPath, "font", cfg.Overlay.FontPath, "Path to a TrueType font")
	cmd.Flags().Float64Var(&cfg.Overlay.FontSize, "font-size", cfg.Overlay.FontSize, "Font size in points")
	cmd.Flags().IntVar(&cfg.Overlay.Padding, "padding", cfg.Overlay.Padding, "Padding from the image edge in pixels")
	cmd.Flags().IntVar(&cfg.Overlay.Quality, "quality", cfg.Overlay.Quality, "JPEG output quality (1-100)")
	cmd.Flags().StringVar(&cfg.Overlay.Banner, "banner", cfg.Overlay.Banner, "Optional project banner text shown above the metadata")
	cmd.Flags().BoolVar(&cfg.Overlay.ShowHeading, "heading", cfg.Overlay.ShowHeading, "Show the compass heading line")
	cmd.Flags().IntVar(&cfg.Overlay.HeadingPrecision, "heading-precision", cfg.Overlay.HeadingPrecision, "Compass sector precision (8 or 16)")

	// Projection
	cmd.Flags().BoolVar(&cfg.Projection.Enabled, "project", cfg.Projection.Enabled, "Add a reprojected location line")
	cmd.Flags().StringVar(&cfg.Projection.Target, "projection", cfg.Projection.Target, "Target spatial reference identifier, e.g. EPSG:25832")
	cmd.Flags().IntVar(&cfg.Projection.Zone, "zone", cfg.Projection.Zone, "Zone number shown next to projected coordinates")
	cmd.Flags().StringVar(&cfg.Projection.Hemisphere, "hemisphere", cfg.Projection.Hemisphere, "Hemisphere letter shown next to the zone (N or S)")

	// Batch options
	cmd.Flags().IntVar(&cfg.Batch.Workers, "workers", cfg.Batch.Workers, "Number of concurrent workers (1-32)")
	cmd.Flags().StringVar(&cfg.Batch.Collision, "collision", cfg.Batch.Collision, "Output collision mode (overwrite, skip, rename)")
	cmd.Flags().BoolVar(&cfg.Batch.DryRun, "dry-run", cfg.Batch.DryRun, "Resolve and report without writing anything")

	// Optional S3 sink
	cmd.Flags().BoolVar(&cfg.S3.Enabled, "s3-upload", cfg.S3.Enabled, "Upload processed images to S3-compatible storage")
	cmd.Flags().StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3 endpoint URL")
	cmd.Flags().StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region")
	cmd.Flags().StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket name")
	cmd.Flags().StringVar(&cfg.S3.AccessKey, "s3-access-key", cfg.S3.AccessKey, "S3 access key")
	cmd.Flags().StringVar(&cfg.S3.SecretKey, "s3-secret-key", cfg.S3.SecretKey, "S3 secret key")
	cmd.Flags().BoolVar(&cfg.S3.UseSSL, "s3-use-ssl", cfg.S3.UseSSL, "Use SSL for the S3 connection")
	cmd.Flags().StringVar(&cfg.S3.Prefix, "s3-prefix", cfg.S3.Prefix, "Prefix for S3 object keys")

	return cmd
}

func runProcess(cmd *cobra.Command, cfg *config.Config) error {
	if err := logger.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	if info, err := os.Stat(cfg.Input); err != nil || !info.IsDir() {
		return fmt.Errorf("input directory %s does not exist", cfg.Input)
	}

	ctx := cmd.Context()

	var sink batch.Sink
	if cfg.S3.Enabled {
		client, err := s3client.New(ctx, s3client.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		sink = client
	}

	textColor, err := config.ParseRGB(cfg.Overlay.TextColor)
	if err != nil {
		return err
	}
	outlineColor, err := config.ParseRGB(cfg.Overlay.OutlineColor)
	if err != nil {
		return err
	}

	// Each worker gets its own pipeline: a private projection cache and
	// font face, never shared across the pool.
	factory := func() batch.Processor {
		extractor := metadata.NewExtractor(metadata.Options{
			ProjectionEnabled: cfg.Projection.Enabled,
			ProjectionTarget:  cfg.Projection.Target,
			Zone:              cfg.Projection.Zone,
			Hemisphere:        cfg.Projection.Hemisphere,
			ShowHeading:       cfg.Overlay.ShowHeading,
			HeadingPrecision:  cfg.Overlay.HeadingPrecision,
			Banner:            cfg.Overlay.Banner,
		}, projection.NewCache())

		renderer := overlay.NewRenderer(overlay.Options{
			Position:     cfg.Overlay.Position,
			TextColor:    textColor,
			OutlineColor: outlineColor,
			OutlineWidth: cfg.Overlay.OutlineWidth,
			FontPath:     cfg.Overlay.FontPath,
			FontSize:     cfg.Overlay.FontSize,
			Padding:      cfg.Overlay.Padding,
			Quality:      cfg.Overlay.Quality,
		})

		return batch.NewPipeline(extractor, renderer)
	}

	driver := batch.NewDriver(cfg, factory, progress.New(), sink)

	summary, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	logger.Debug("Summary: %+v", summary)
	return nil
}

// applyConfigFile merges file values into cfg for every key not set
// explicitly on the command line.
func applyConfigFile(path string, flags *pflag.FlagSet, cfg *config.Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	setString := func(key, flag string, dst *string) {
		if v.IsSet(key) && !flags.Changed(flag) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key, flag string, dst *int) {
		if v.IsSet(key) && !flags.Changed(flag) {
			*dst = v.GetInt(key)
		}
	}
	setBool := func(key, flag string, dst *bool) {
		if v.IsSet(key) && !flags.Changed(flag) {
			*dst = v.GetBool(key)
		}
	}
	setFloat := func(key, flag string, dst *float64) {
		if v.IsSet(key) && !flags.Changed(flag) {
			*dst = v.GetFloat64(key)
		}
	}

	setString("input", "input", &cfg.Input)
	setString("output", "output", &cfg.Output)
	setString("position", "position", &cfg.Overlay.Position)
	setString("text-color", "text-color", &cfg.Overlay.TextColor)
	setString("outline-color", "outline-color", &cfg.Overlay.OutlineColor)
	setInt("outline-width", "outline-width", &cfg.Overlay.OutlineWidth)
	setString("font", "font", &cfg.Overlay.FontPath)
	setFloat("font-size", "font-size", &cfg.Overlay.FontSize)
	setInt("padding", "padding", &cfg.Overlay.Padding)
	setInt("quality", "quality", &cfg.Overlay.Quality)
	setString("banner", "banner", &cfg.Overlay.Banner)
	setBool("heading", "heading", &cfg.Overlay.ShowHeading)
	setInt("heading-precision", "heading-precision", &cfg.Overlay.HeadingPrecision)
	setBool("project", "project", &cfg.Projection.Enabled)
	setString("projection", "projection", &cfg.Projection.Target)
	setInt("zone", "zone", &cfg.Projection.Zone)
	setString("hemisphere", "hemisphere", &cfg.Projection.Hemisphere)
	setInt("workers", "workers", &cfg.Batch.Workers)
	setString("collision", "collision", &cfg.Batch.Collision)
	setBool("dry-run", "dry-run", &cfg.Batch.DryRun)
	setBool("s3-upload", "s3-upload", &cfg.S3.Enabled)
	setString("s3-endpoint", "s3-endpoint", &cfg.S3.Endpoint)
	setString("s3-region", "s3-region", &cfg.S3.Region)
	setString("s3-bucket", "s3-bucket", &cfg.S3.Bucket)
	setString("s3-access-key", "s3-access-key", &cfg.S3.AccessKey)
	setString("s3-secret-key", "s3-secret-key", &cfg.S3.SecretKey)
	setBool("s3-use-ssl", "s3-use-ssl", &cfg.S3.UseSSL)
	setString("s3-prefix", "s3-prefix", &cfg.S3.Prefix)

	return nil
}
