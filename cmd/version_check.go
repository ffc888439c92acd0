package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrReleaseLookupFailed = errors.New("release lookup failed")

const (
	releasesURL     = "https://api.github.com/repos/cottagelabs/lantern-compare/releases/latest"
	releaseTimeout  = 5 * time.Second
	releaseCacheTTL = 24 * time.Hour
)

// latestRelease is the slice of GitHub's release payload we use
type latestRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// updateStatus is the outcome of the startup release check
type updateStatus struct {
	UpdateAvailable bool
	Current         string
	Latest          string
	ReleaseURL      string
	Err             error
}

// checkForUpdates asks GitHub for the newest release. Failures are
// carried in the result, never fatal; dev builds skip the check
// entirely. Successful lookups are cached for a day under the user's
// home directory.
func checkForUpdates(ctx context.Context, current string) updateStatus {
	status := updateStatus{Current: current}
	if current == "" || current == "dev" {
		return status
	}

	if cached, fresh := readReleaseCache(); fresh {
		status.Latest = cached.Latest
		status.ReleaseURL = cached.URL
		status.UpdateAvailable = cached.UpdateAvailable
		return status
	}

	release, err := fetchLatestRelease(ctx, current)
	if err != nil {
		status.Err = err
		return status
	}

	status.Latest = strings.TrimPrefix(release.TagName, "v")
	status.ReleaseURL = release.HTMLURL
	status.UpdateAvailable = compareVersions(status.Latest, strings.TrimPrefix(current, "v")) > 0

	writeReleaseCache(releaseCache{
		Latest:          status.Latest,
		URL:             status.ReleaseURL,
		UpdateAvailable: status.UpdateAvailable,
		CheckedAt:       time.Now(),
	})
	return status
}

func fetchLatestRelease(ctx context.Context, current string) (*latestRelease, error) {
	client := &http.Client{Timeout: releaseTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// GitHub's API rejects requests without a User-Agent
	req.Header.Set("User-Agent", "lantern-compare/"+current)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReleaseLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrReleaseLookupFailed, resp.StatusCode)
	}

	var release latestRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReleaseLookupFailed, err)
	}
	return &release, nil
}

// compareVersions orders two dotted version strings: 1 when v1 is
// newer than v2, -1 when older, 0 when equal
func compareVersions(v1, v2 string) int {
	parts1 := parseVersion(v1)
	parts2 := parseVersion(v2)

	for i := 0; i < 3; i++ {
		if parts1[i] != parts2[i] {
			if parts1[i] > parts2[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// parseVersion reads up to major.minor.patch; missing or unparsable
// components count as zero
func parseVersion(version string) [3]int {
	var parts [3]int
	for i, component := range strings.Split(version, ".") {
		if i == 3 {
			break
		}
		_, _ = fmt.Sscanf(component, "%d", &parts[i])
	}
	return parts
}

// releaseCache is the on-disk record of the last successful lookup
type releaseCache struct {
	Latest          string    `json:"latest"`
	URL             string    `json:"url"`
	UpdateAvailable bool      `json:"update_available"`
	CheckedAt       time.Time `json:"checked_at"`
}

func releaseCachePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lantern-compare", "version_check.json")
}

func readReleaseCache() (releaseCache, bool) {
	var cache releaseCache

	data, err := os.ReadFile(releaseCachePath())
	if err != nil || json.Unmarshal(data, &cache) != nil {
		return cache, false
	}
	return cache, time.Since(cache.CheckedAt) < releaseCacheTTL
}

func writeReleaseCache(cache releaseCache) {
	path := releaseCachePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o600)
}

func formatUpdateMessage(status updateStatus) string {
	return fmt.Sprintf("Update available: v%s → v%s (visit %s)",
		status.Current, status.Latest, status.ReleaseURL)
}
