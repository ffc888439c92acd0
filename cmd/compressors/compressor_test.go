package compressors

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestGetCompressor(t *testing.T) {
	for _, name := range []string{"zstd", "lz4", "gzip", "none"} {
		compressor, err := GetCompressor(name)
		if err != nil {
			t.Fatalf("'%s' should be supported: %v", name, err)
		}
		if compressor == nil {
			t.Fatalf("'%s' returned a nil compressor", name)
		}
	}

	_, err := GetCompressor("brotli")
	if !errors.Is(err, ErrUnsupportedCompression) {
		t.Fatalf("expected unsupported compression error, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("PMCID,PMID,DOI\nPMC1,10,d1\n"), 200)

	for _, name := range []string{"zstd", "lz4", "gzip", "none"} {
		t.Run(name, func(t *testing.T) {
			compressor, err := GetCompressor(name)
			if err != nil {
				t.Fatalf("failed to get compressor: %v", err)
			}

			compressed, err := compressor.Compress(payload, compressor.DefaultLevel())
			if err != nil {
				t.Fatalf("compression failed: %v", err)
			}

			reader, err := compressor.NewReader(bytes.NewReader(compressed))
			if err != nil {
				t.Fatalf("failed to create reader: %v", err)
			}
			defer reader.Close()

			decompressed, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("decompression failed: %v", err)
			}

			if !bytes.Equal(decompressed, payload) {
				t.Fatal("round trip did not preserve the payload")
			}
		})
	}
}

func TestExtensions(t *testing.T) {
	cases := map[string]string{
		"zstd": ".zst",
		"lz4":  ".lz4",
		"gzip": ".gz",
		"none": "",
	}

	for name, want := range cases {
		compressor, err := GetCompressor(name)
		if err != nil {
			t.Fatalf("failed to get compressor '%s': %v", name, err)
		}
		if got := compressor.Extension(); got != want {
			t.Fatalf("'%s' extension: expected '%s', got '%s'", name, want, got)
		}
	}
}

func TestDetect(t *testing.T) {
	cases := map[string]string{
		"results.csv.zst": "zstd",
		"results.csv.lz4": "lz4",
		"results.csv.gz":  "gzip",
		"results.csv":     "none",
		"archive.zstd":    "none",
	}

	for filename, want := range cases {
		if got := Detect(filename); got != want {
			t.Fatalf("Detect(%s): expected '%s', got '%s'", filename, want, got)
		}
	}
}

func TestNoneCompressorPassthrough(t *testing.T) {
	compressor := NewNoneCompressor()

	data := []byte("unchanged")
	out, err := compressor.Compress(data, 0)
	if err != nil {
		t.Fatalf("none compressor should not fail: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("none compressor should return data unchanged")
	}
}
