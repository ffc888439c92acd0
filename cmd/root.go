package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cottagelabs/lantern-compare/cmd/compressors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information - set via ldflags during build
	// Example: go build -ldflags "-X github.com/cottagelabs/lantern-compare/cmd.Version=1.2.3"
	Version = "dev" // Default to "dev" if not set during build

	// signalContext is set by main() before Cobra initialization
	// This ensures signal handling is set up before any library can interfere
	signalContext context.Context

	cfgFile          string
	debug            bool
	logFormat        string
	originalFile     string
	settingsFile     string
	outputPath       string
	printHeaders     bool
	compression      string
	compressionLevel int
	s3Endpoint       string
	s3Bucket         string
	s3AccessKey      string
	s3SecretKey      string
	s3Region         string
	s3Prefix         string

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true).
			Underline(true)

	logger *slog.Logger
)

// SetSignalContext stores the signal-aware context created in main()
// This must be called before Execute() to ensure proper signal handling
func SetSignalContext(ctx context.Context) {
	signalContext = ctx
}

// textOnlyHandler is a custom slog handler that outputs human-readable text
// without key=value pairs, suitable for interactive terminal usage
type textOnlyHandler struct {
	opts   slog.HandlerOptions
	writer io.Writer
}

func newTextOnlyHandler(w io.Writer, opts *slog.HandlerOptions) *textOnlyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &textOnlyHandler{
		opts:   *opts,
		writer: w,
	}
}

func (h *textOnlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *textOnlyHandler) Handle(_ context.Context, r slog.Record) error {
	// Format: YYYY-MM-DD HH:MM:SS LEVEL message
	timestamp := r.Time.Format("2006-01-02 15:04:05")
	level := r.Level.String()

	_, err := fmt.Fprintf(h.writer, "%s %s %s\n", timestamp, level, r.Message)
	return err
}

func (h *textOnlyHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	// For simplicity, we ignore attributes in text-only mode
	return h
}

func (h *textOnlyHandler) WithGroup(_ string) slog.Handler {
	// For simplicity, we ignore groups in text-only mode
	return h
}

// initLogger initializes the slog logger based on debug flag and log format
func initLogger(isDebug bool, format string) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if isDebug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "logfmt":
		// logfmt uses slog.TextHandler which outputs key=value pairs
		handler = slog.NewTextHandler(os.Stdout, opts)
	default: // "text" or anything else
		handler = newTextOnlyHandler(os.Stdout, opts)
	}

	logger = slog.New(handler)
}

var rootCmd = &cobra.Command{
	Use:     "lantern-compare",
	Version: Version,
	Short:   "🔍 Compare two Lantern analysis CSVs derived from a common original",
	Long: titleStyle.Render("Lantern Compare") + `

A CLI tool that compares two CSV analysis results derived from one original
sheet and reports, per column, which articles disagree between the two runs.
Rows are matched by identifier (PMCID, then PMID, then DOI), not by position,
so re-sorted or partially regenerated sheets compare cleanly. Rows that cannot
be matched by any identifier are reported as suspicious.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// Show help when no subcommand is specified
		cmd.Help()
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <file-a> <file-b>",
	Short: "Compare two analysis result CSVs",
	Long: `Compare two analysis result CSVs against each other, using the original
sheet (--original-file) for canonical identifying metadata. Writes a
multi-section differences CSV and, when rows fail to match, a suspicious-rows
CSV next to it. Inputs may be gzip/zstd/lz4-compressed.`,
	Args: cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		runCompare(args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(compareCmd)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lantern-compare.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output (disables the progress display)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, logfmt, json)")

	// Compare-specific flags
	compareCmd.Flags().StringVar(&originalFile, "original-file", "", "path to the original CSV both compared files derive from (required)")
	compareCmd.Flags().StringVar(&settingsFile, "settings", "", "comparison settings JSON (default: settings.json plus <original>.json override)")
	compareCmd.Flags().StringVarP(&outputPath, "output-path", "o", DefaultResultsTemplate, "results CSV path; {a} and {b} expand to the input basenames")
	compareCmd.Flags().BoolVar(&printHeaders, "print-headers", false, "dump the post-whitelist CSV headers of all three files")
	compareCmd.Flags().StringVar(&compression, "compression", "none", "compression for written reports: zstd, lz4, gzip, none")
	compareCmd.Flags().IntVar(&compressionLevel, "compression-level", 0, "compression level (zstd: 1-22, lz4/gzip: 1-9, 0 = compressor default)")

	compareCmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL for report upload")
	compareCmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "S3 bucket to upload written reports to (enables upload)")
	compareCmd.Flags().StringVar(&s3AccessKey, "s3-access-key", "", "S3 access key")
	compareCmd.Flags().StringVar(&s3SecretKey, "s3-secret-key", "", "S3 secret key")
	compareCmd.Flags().StringVar(&s3Region, "s3-region", "auto", "S3 region")
	compareCmd.Flags().StringVar(&s3Prefix, "s3-prefix", "", "key prefix for uploaded reports")

	// Note: We don't use MarkFlagRequired because it checks before viper loads the config file.
	// Instead, validation happens in config.Validate() which runs after all config sources are loaded.

	// Bind persistent flags
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Bind compare flags
	_ = viper.BindPFlag("original_file", compareCmd.Flags().Lookup("original-file"))
	_ = viper.BindPFlag("settings", compareCmd.Flags().Lookup("settings"))
	_ = viper.BindPFlag("output_path", compareCmd.Flags().Lookup("output-path"))
	_ = viper.BindPFlag("print_headers", compareCmd.Flags().Lookup("print-headers"))
	_ = viper.BindPFlag("compression", compareCmd.Flags().Lookup("compression"))
	_ = viper.BindPFlag("compression_level", compareCmd.Flags().Lookup("compression-level"))
	_ = viper.BindPFlag("s3.endpoint", compareCmd.Flags().Lookup("s3-endpoint"))
	_ = viper.BindPFlag("s3.bucket", compareCmd.Flags().Lookup("s3-bucket"))
	_ = viper.BindPFlag("s3.access_key", compareCmd.Flags().Lookup("s3-access-key"))
	_ = viper.BindPFlag("s3.secret_key", compareCmd.Flags().Lookup("s3-secret-key"))
	_ = viper.BindPFlag("s3.region", compareCmd.Flags().Lookup("s3-region"))
	_ = viper.BindPFlag("s3.prefix", compareCmd.Flags().Lookup("s3-prefix"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lantern-compare")
	}

	viper.SetEnvPrefix("LANTERN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && debug {
		// Initialize logger early if reading config in debug mode
		if logger == nil {
			initLogger(debug, logFormat)
		}
		logger.Debug(fmt.Sprintf("📄 Using config file: %s", viper.ConfigFileUsed()))
	}
}

func runCompare(args []string) {
	// Add panic recovery to catch any unexpected crashes
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n❌ PANIC: %v\n", r)
			os.Exit(1)
		}
	}()

	config := &Config{
		Debug:            viper.GetBool("debug"),
		LogFormat:        viper.GetString("log_format"),
		FileA:            args[0],
		FileB:            args[1],
		OriginalFile:     viper.GetString("original_file"),
		SettingsFile:     viper.GetString("settings"),
		OutputTemplate:   viper.GetString("output_path"),
		PrintHeaders:     viper.GetBool("print_headers"),
		Compression:      viper.GetString("compression"),
		CompressionLevel: viper.GetInt("compression_level"),
		S3: S3Config{
			Endpoint:  viper.GetString("s3.endpoint"),
			Bucket:    viper.GetString("s3.bucket"),
			AccessKey: viper.GetString("s3.access_key"),
			SecretKey: viper.GetString("s3.secret_key"),
			Region:    viper.GetString("s3.region"),
			Prefix:    viper.GetString("s3.prefix"),
		},
	}

	// Level 0 means the compressor's own default
	if config.CompressionLevel == 0 && config.Compression != "none" {
		if compressor, err := compressors.GetCompressor(config.Compression); err == nil {
			config.CompressionLevel = compressor.DefaultLevel()
		}
	}

	// Initialize logger
	initLogger(config.Debug, config.LogFormat)

	// Log startup banner
	logger.Info("")
	logger.Info(fmt.Sprintf("🔍 Lantern Compare v%s", Version))
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	logger.Debug("Validating configuration...")
	if err := config.Validate(); err != nil {
		logger.Error(fmt.Sprintf("❌ Configuration error: %s", err.Error()))
		os.Exit(1)
	}
	logger.Debug("Configuration validated successfully")

	// Check for updates in background (non-blocking)
	updateCheckDone := make(chan struct{})
	go func() {
		defer close(updateCheckDone)
		status := checkForUpdates(context.Background(), Version)

		if status.UpdateAvailable {
			logger.Info("")
			logger.Info(fmt.Sprintf("💡 %s", formatUpdateMessage(status)))
		} else if status.Err != nil && config.Debug {
			logger.Debug(fmt.Sprintf("Version check failed: %v", status.Err))
		}
	}()

	select {
	case <-updateCheckDone:
		// Version check completed quickly
	case <-time.After(2 * time.Second):
		logger.Debug("Version check taking longer than expected, continuing...")
	}

	logger.Debug("Loading comparison settings...")
	settings, err := loadSettings(config.SettingsFile, config.OriginalFile)
	if err != nil {
		logger.Error(fmt.Sprintf("❌ Configuration error: %s", err.Error()))
		os.Exit(1)
	}

	// Use the signal context created in main() before Cobra initialization
	ctx := signalContext
	if ctx == nil {
		// Fallback if SetSignalContext wasn't called (shouldn't happen)
		logger.Warn("Signal context not set, creating fallback...")
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	logger.Debug("Creating comparer...")
	comparer := NewComparer(config, settings, logger)
	logger.Debug("Starting comparison...")

	if config.Debug {
		err = comparer.Run(ctx)
	} else {
		err = runWithProgress(comparer, func() error {
			return comparer.Run(ctx)
		})
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("")
			logger.Info("⚠️  Comparison cancelled by user")
			os.Exit(130)
		}
		logger.Error(fmt.Sprintf("❌ Comparison failed: %s", err.Error()))
		os.Exit(1)
	}

	logger.Info("")
	logger.Info("✅ Comparison completed successfully!")
}
