package cmd

import (
	"errors"
	"fmt"
	"regexp"
)

// Static errors for configuration validation
var (
	ErrFileARequired           = errors.New("first comparison file is required")
	ErrFileBRequired           = errors.New("second comparison file is required")
	ErrOriginalFileRequired    = errors.New("original file is required")
	ErrOutputTemplateRequired  = errors.New("output path template is required")
	ErrLogFormatInvalid        = errors.New("log format must be one of: text, logfmt, json")
	ErrCompressionInvalid      = errors.New("compression must be one of: zstd, lz4, gzip, none")
	ErrCompressionLevelInvalid = errors.New("compression level must be between 1 and 22 (zstd), 1-9 (lz4/gzip)")
	ErrS3EndpointRequired      = errors.New("S3 endpoint is required when an S3 bucket is configured")
	ErrS3AccessKeyRequired     = errors.New("S3 access key is required when an S3 bucket is configured")
	ErrS3SecretKeyRequired     = errors.New("S3 secret key is required when an S3 bucket is configured")
	ErrS3RegionInvalid         = errors.New("S3 region contains invalid characters or is too long")
)

const regionAuto = "auto"

type Config struct {
	Debug     bool
	LogFormat string

	// The two analysis exports to compare and the original file both
	// were derived from
	FileA        string
	FileB        string
	OriginalFile string

	// Explicit settings file; when empty, settings.json and the
	// per-original-file override are discovered in the working directory
	SettingsFile string

	// Results path template; {a} and {b} expand to the input basenames
	OutputTemplate string

	// Dump the post-whitelist headers of all three files and continue
	PrintHeaders bool

	// Compression applied to written reports
	Compression      string
	CompressionLevel int

	S3 S3Config
}

// S3Config configures optional publication of the written reports.
// Upload is enabled when Bucket is set.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Prefix    string
}

// Enabled reports whether report artifacts should be uploaded
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// isValidRegion validates that an S3 region is reasonable
func isValidRegion(region string) bool {
	if region == "" {
		return false
	}

	// Region should be reasonable length
	if len(region) > 50 {
		return false
	}

	// Region should only contain alphanumeric, dash, and underscore
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, region)
	return matched
}

// isValidLogFormat validates the log format
func isValidLogFormat(format string) bool {
	validFormats := map[string]bool{
		"text":   true,
		"logfmt": true,
		"json":   true,
	}
	return validFormats[format]
}

// isValidCompression validates the compression type
func isValidCompression(compression string) bool {
	validCompressions := map[string]bool{
		"zstd": true,
		"lz4":  true,
		"gzip": true,
		"none": true,
	}
	return validCompressions[compression]
}

// isValidCompressionLevel validates compression level based on compression type
func isValidCompressionLevel(compression string, level int) bool {
	switch compression {
	case "zstd":
		return level >= 1 && level <= 22
	case "lz4", "gzip":
		return level >= 1 && level <= 9
	case "none":
		return level == 0 // no compression, level should be 0
	default:
		return false
	}
}

func (c *Config) Validate() error {
	if c.FileA == "" {
		return ErrFileARequired
	}
	if c.FileB == "" {
		return ErrFileBRequired
	}
	if c.OriginalFile == "" {
		return ErrOriginalFileRequired
	}

	if c.OutputTemplate == "" {
		return ErrOutputTemplateRequired
	}

	if c.LogFormat != "" && !isValidLogFormat(c.LogFormat) {
		return fmt.Errorf("%w: '%s'", ErrLogFormatInvalid, c.LogFormat)
	}

	if !isValidCompression(c.Compression) {
		return fmt.Errorf("%w: '%s'", ErrCompressionInvalid, c.Compression)
	}
	if !isValidCompressionLevel(c.Compression, c.CompressionLevel) {
		return fmt.Errorf("%w for compression %s: got %d", ErrCompressionLevelInvalid, c.Compression, c.CompressionLevel)
	}

	// S3 settings are all-or-none, keyed off the bucket
	if c.S3.Enabled() {
		if c.S3.Endpoint == "" {
			return ErrS3EndpointRequired
		}
		if c.S3.AccessKey == "" {
			return ErrS3AccessKeyRequired
		}
		if c.S3.SecretKey == "" {
			return ErrS3SecretKeyRequired
		}
		if c.S3.Region != "" && c.S3.Region != regionAuto {
			if !isValidRegion(c.S3.Region) {
				return fmt.Errorf("%w: %s", ErrS3RegionInvalid, c.S3.Region)
			}
		}
	}

	return nil
}
