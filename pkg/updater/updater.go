// Package updater asks the release feed whether a newer ols-dialog exists.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/compomics/ols-dialog/pkg/version"
)

// DefaultReleasesURL is the GitHub API endpoint for the latest release.
const DefaultReleasesURL = "https://api.github.com/repos/compomics/ols-dialog/releases/latest"

// Release is the part of the GitHub release document we read.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker queries the release feed.
type Checker struct {
	URL     string
	Client  *http.Client
	Current string
}

// NewChecker returns a checker for the running version with a short timeout.
func NewChecker() *Checker {
	return &Checker{
		URL:     DefaultReleasesURL,
		Client:  &http.Client{Timeout: 2 * time.Second},
		Current: version.Version,
	}
}

// Check returns the latest release when it is newer than the running
// version, or nil when up to date.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "ols-dialog/"+c.Current)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned status: %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	if CompareVersions(rel.TagName, c.Current) > 0 {
		return &rel, nil
	}
	return nil, nil
}

// CompareVersions returns 1 if v1 > v2, -1 if v1 < v2 and 0 if equal.
// Versions are dotted numbers with an optional "v" prefix; anything after
// a "-" is ignored.
func CompareVersions(v1, v2 string) int {
	a, b := segments(v1), segments(v2)
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

func segments(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	var out []int
	for _, part := range strings.Split(v, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}
