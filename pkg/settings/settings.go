// Package settings reads the web UI settings file and extracts the keys
// relevant to preview display
package settings

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Settings errors
var (
	ErrSettingsNotFound = errors.New("settings file not found")
	ErrInvalidSettings  = errors.New("settings file is not a JSON object")
)

// valueLimit is the rune length above which string values are shortened
const valueLimit = 50

// DefaultKeys are the key substrings reported when none are configured
//
//nolint:gochecknoglobals // Default configuration
var DefaultKeys = []string{
	"samples_format",
	"extra_networks",
	"ch_civiai_api_key",
	"ch_max_size",
	"ch_skip_nsfw",
	"ckpt_dir",
	"lora_dir",
}

// Setting is one reported key/value pair
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// File is a parsed settings file
type File struct {
	Path string
	root gjson.Result
}

// Load reads and parses the settings file at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided settings path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, err
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSettings, path)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSettings, path)
	}

	return &File{Path: path, root: root}, nil
}

// Relevant returns every top-level key whose lower-cased name contains one of
// substrings, sorted by key. Long string values are shortened.
func (f *File) Relevant(substrings []string) []Setting {
	if len(substrings) == 0 {
		substrings = DefaultKeys
	}

	var out []Setting

	f.root.ForEach(func(key, value gjson.Result) bool {
		name := strings.ToLower(key.String())
		for _, sub := range substrings {
			if strings.Contains(name, strings.ToLower(sub)) {
				out = append(out, Setting{Key: key.String(), Value: render(value)})
				break
			}
		}
		return true
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})

	return out
}

func render(value gjson.Result) string {
	if value.Type != gjson.String {
		return value.Raw
	}

	s := value.String()
	if utf8.RuneCountInString(s) > valueLimit {
		return string([]rune(s)[:valueLimit]) + "..."
	}

	return s
}
