package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceLoader reads per-user subscription seeds from a directory of
// .yml files. The user ID defaults to the file name.
type SourceLoader struct {
	feedsDir string
}

func NewSourceLoader(feedsDir string) *SourceLoader {
	return &SourceLoader{feedsDir: feedsDir}
}

func (l *SourceLoader) LoadAll() ([]SubscriptionFile, error) {
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	yamlFiles, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)
	sort.Strings(files)

	result := make([]SubscriptionFile, 0, len(files))
	for _, file := range files {
		subs, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Subscriptions loaded", "file", file, "user", subs.UserID, "feeds", len(subs.Feeds))
		result = append(result, *subs)
	}

	return result, nil
}

func (l *SourceLoader) loadFile(path string) (*SubscriptionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var subs SubscriptionFile
	if err := yaml.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if subs.UserID == "" {
		base := filepath.Base(path)
		subs.UserID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := validateSubscriptions(&subs); err != nil {
		return nil, err
	}

	return &subs, nil
}

func validateSubscriptions(subs *SubscriptionFile) error {
	for i, sub := range subs.Feeds {
		if sub.URL == "" {
			return fmt.Errorf("feed at index %d: URL is required", i)
		}
		if err := ValidateURL(sub.URL); err != nil {
			return fmt.Errorf("feed at index %d: %w", i, err)
		}
	}
	return nil
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid feed URL %q", raw)
	}
	return nil
}
