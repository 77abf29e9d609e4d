package updates

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/models"
)

// Events pushed after an update check
const (
	EventAvailable    = "update:available"
	EventNotAvailable = "update:not-available"
	EventError        = "update:error"
)

// ErrNoFeed is returned when no release feed is configured
var ErrNoFeed = errors.New("no update feed configured")

// maxFeedSize bounds the release feed body
const maxFeedSize = 1 << 20

// Release is the latest release announced by the feed
type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes"`
}

// Checker compares the running version with the release feed
type Checker struct {
	feedURL string
	current string
	client  *http.Client
}

// NewChecker returns a checker for the feed at feedURL. An empty feedURL disables checks.
func NewChecker(feedURL, current string) *Checker {
	return &Checker{
		feedURL: strings.TrimSpace(feedURL),
		current: current,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Check fetches the feed and reports whether it announces a newer version
func (c *Checker) Check(ctx context.Context) (models.UpdateInfo, error) {
	info := models.UpdateInfo{CurrentVersion: c.current}
	if c.feedURL == "" {
		return info, ErrNoFeed
	}
	current := canonical(c.current)
	if current == "" {
		return info, errors.Errorf("current version %q is not a semantic version", c.current)
	}

	release, err := c.fetch(ctx)
	if err != nil {
		return info, err
	}
	latest := canonical(release.Version)
	if latest == "" {
		return info, errors.Errorf("feed version %q is not a semantic version", release.Version)
	}

	info.LatestVersion = latest
	info.Available = semver.Compare(latest, current) > 0
	if info.Available {
		info.DownloadURL = release.URL
		info.Notes = release.Notes
	}
	return info, nil
}

// CheckAndNotify runs Check and pushes the matching update event
func (c *Checker) CheckAndNotify(ctx context.Context, n board.Notifier) (models.UpdateInfo, error) {
	info, err := c.Check(ctx)
	if n == nil {
		return info, err
	}
	switch {
	case err != nil:
		n.Notify(EventError, models.MessageError{Message: "update check failed", Error: err.Error()})
	case info.Available:
		n.Notify(EventAvailable, info)
	default:
		n.Notify(EventNotAvailable, info)
	}
	return info, err
}

func (c *Checker) fetch(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return Release{}, errors.Wrap(err, "create update request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Release{}, errors.Wrap(err, "fetch update feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, errors.Errorf("update feed returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedSize)).Decode(&release); err != nil {
		return Release{}, errors.Wrap(err, "decode update feed")
	}
	zap.S().Debugw("fetched update feed", "latest", release.Version, "current", c.current)
	return release, nil
}

// canonical adds the "v" prefix semver expects and returns "" for invalid versions
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
