package settings

import (
	"strings"

	"github.com/butinmaker/butinmaker/internal/config"
	"github.com/butinmaker/butinmaker/internal/crypto"
)

// Setting keys in the settings table.
const (
	KeyHardlinkDir    = "paths.hardlink_dir"
	KeyOutputDir      = "paths.output_dir"
	KeyTrackerBaseURL = "tracker.base_url"
	KeyAnnounceURL    = "tracker.announce_url"
	KeyTrackerAPIKey  = "tracker.api_key"
	KeyTMDBAPIKey     = "tmdb.api_key"

	keySalt = "security.salt"
)

// secretKeys are encrypted at rest and masked in API output.
var secretKeys = map[string]bool{
	KeyTrackerAPIKey: true,
	KeyTMDBAPIKey:    true,
}

// Settings are the user-editable values. Stored values override the
// configuration file.
type Settings struct {
	HardlinkDir    string `json:"hardlink_dir"`
	OutputDir      string `json:"output_dir"`
	TrackerBaseURL string `json:"tracker_base_url"`
	AnnounceURL    string `json:"announce_url"`
	TrackerAPIKey  string `json:"tracker_api_key"`
	TMDBAPIKey     string `json:"tmdb_api_key"`
}

// Defaults takes the settings from the loaded configuration.
func Defaults(cfg *config.Config) Settings {
	return Settings{
		HardlinkDir:    cfg.Paths.HardlinkDir,
		OutputDir:      cfg.Paths.OutputDir,
		TrackerBaseURL: cfg.Tracker.BaseURL,
		AnnounceURL:    cfg.Tracker.AnnounceURL,
		TrackerAPIKey:  cfg.Tracker.APIKey,
		TMDBAPIKey:     cfg.TMDB.APIKey,
	}
}

// Masked returns a copy safe to send to the browser.
func (s Settings) Masked() Settings {
	s.TrackerAPIKey = crypto.Mask(s.TrackerAPIKey)
	s.TMDBAPIKey = crypto.Mask(s.TMDBAPIKey)
	return s
}

func (s *Settings) field(key string) *string {
	switch key {
	case KeyHardlinkDir:
		return &s.HardlinkDir
	case KeyOutputDir:
		return &s.OutputDir
	case KeyTrackerBaseURL:
		return &s.TrackerBaseURL
	case KeyAnnounceURL:
		return &s.AnnounceURL
	case KeyTrackerAPIKey:
		return &s.TrackerAPIKey
	case KeyTMDBAPIKey:
		return &s.TMDBAPIKey
	}
	return nil
}

// Update changes the non-nil fields. An empty string removes the stored
// value so the configured default applies again.
type Update struct {
	HardlinkDir    *string `json:"hardlink_dir,omitempty"`
	OutputDir      *string `json:"output_dir,omitempty"`
	TrackerBaseURL *string `json:"tracker_base_url,omitempty" validate:"omitempty,url"`
	AnnounceURL    *string `json:"announce_url,omitempty" validate:"omitempty,url"`
	TrackerAPIKey  *string `json:"tracker_api_key,omitempty"`
	TMDBAPIKey     *string `json:"tmdb_api_key,omitempty"`
}

func (u Update) values() map[string]*string {
	return map[string]*string{
		KeyHardlinkDir:    u.HardlinkDir,
		KeyOutputDir:      u.OutputDir,
		KeyTrackerBaseURL: u.TrackerBaseURL,
		KeyAnnounceURL:    u.AnnounceURL,
		KeyTrackerAPIKey:  u.TrackerAPIKey,
		KeyTMDBAPIKey:     u.TMDBAPIKey,
	}
}

// isMasked reports whether v is a masked secret echoed back by a client.
func isMasked(v string) bool {
	return strings.HasPrefix(v, "****")
}
