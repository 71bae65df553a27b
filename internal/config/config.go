// Package config loads and validates the static settings for a replication run.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables read at startup.
const (
	// EnvServiceAccountJSON holds the complete Google service-account key.
	EnvServiceAccountJSON = "GOOGLE_SERVICE_ACCOUNT_JSON"
	// EnvGitHubToken holds the token used to report back to the triggering issue.
	EnvGitHubToken = "GITHUB_TOKEN"
)

type (
	// DriveSettings identify the template tree and the destination parent.
	DriveSettings struct {
		TemplateFolderID    string `mapstructure:"template_folder_id"`
		DestinationFolderID string `mapstructure:"destination_folder_id"`
	}

	// FolderStructure controls the names generated during a run.
	FolderStructure struct {
		MainFolderSuffix     string `mapstructure:"main_folder_suffix"`
		SharedFolderName     string `mapstructure:"shared_folder_name"`
		UserListOriginalName string `mapstructure:"user_list_original_name"`
		UserListSuffix       string `mapstructure:"user_list_suffix"`
	}

	// GitHubSettings identify the repository whose issues receive run reports.
	GitHubSettings struct {
		Repository string `mapstructure:"repository"`
	}

	// Settings is the full static configuration for one replication run.
	Settings struct {
		Drive   DriveSettings   `mapstructure:"google_drive"`
		Folders FolderStructure `mapstructure:"folder_structure"`
		GitHub  GitHubSettings  `mapstructure:"github"`
	}
)

// Load reads settings from path. The format (JSON or YAML) is picked from the
// file extension, so both config.yaml and the legacy config.json layout work.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("folder_structure.main_folder_suffix", " (L2)")
	v.SetDefault("folder_structure.shared_folder_name", "Shared with Client")
	v.SetDefault("folder_structure.user_list_original_name", "Authorized User List")
	v.SetDefault("folder_structure.user_list_suffix", " Authorized User List")

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return s, nil
}

// Validate checks that every required key is present.
func (s Settings) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Drive.TemplateFolderID) == "" {
		missing = append(missing, "google_drive.template_folder_id")
	}
	if strings.TrimSpace(s.Drive.DestinationFolderID) == "" {
		missing = append(missing, "google_drive.destination_folder_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ServiceAccountJSON returns the Drive credential from the environment.
func ServiceAccountJSON() ([]byte, error) {
	raw := os.Getenv(EnvServiceAccountJSON)
	if raw == "" {
		return nil, fmt.Errorf("%s environment variable not set", EnvServiceAccountJSON)
	}
	return []byte(raw), nil
}

// GitHubToken returns the issue-reporting token. Empty means reporting runs
// unauthenticated, which GitHub rejects for private repositories.
func GitHubToken() string {
	return os.Getenv(EnvGitHubToken)
}
