package confkit_test

import (
	"os"
	"testing"

	"psyai-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		file     string
		env      map[string]string
		expected string
	}{
		{
			name:     "absolute path wins",
			base:     "/base/dir",
			file:     "/absolute/path/file.yaml",
			expected: "/absolute/path/file.yaml",
		},
		{
			name:     "relative path joins base",
			base:     "/base/dir",
			file:     "config/file.yaml",
			expected: "/base/dir/config/file.yaml",
		},
		{
			name:     "env var expansion",
			base:     "/base/dir",
			file:     "${CONFKIT_TEST_DIR}/file.yaml",
			env:      map[string]string{"CONFKIT_TEST_DIR": "expanded"},
			expected: "/base/dir/expanded/file.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := confkit.ResolvePath(tt.base, tt.file); got != tt.expected {
				t.Errorf("ResolvePath() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBaseDir(t *testing.T) {
	if got := confkit.BaseDir("/etc/config/app.yaml"); got != "/etc/config" {
		t.Errorf("BaseDir() = %v, want /etc/config", got)
	}
	if got := confkit.BaseDir("config/app.yaml"); got != "config" {
		t.Errorf("BaseDir() = %v, want config", got)
	}
}

func TestSection_Hydrate(t *testing.T) {
	t.Run("empty file skips loader", func(t *testing.T) {
		section := &confkit.Section[string]{}
		err := section.Hydrate("/base", func(path string) (*string, error) {
			t.Error("loader should not be called for empty file")
			return nil, nil
		})
		if err != nil {
			t.Errorf("Hydrate() with empty file should not error, got: %v", err)
		}
		if section.Value != nil {
			t.Error("Value should remain nil for empty file")
		}
	})

	t.Run("resolves and stores", func(t *testing.T) {
		section := &confkit.Section[string]{File: "config.yaml"}
		expected := "loaded"

		err := section.Hydrate("/base", func(path string) (*string, error) {
			if path != "/base/config.yaml" {
				t.Errorf("loader received path %v, want /base/config.yaml", path)
			}
			return &expected, nil
		})
		if err != nil {
			t.Errorf("Hydrate() error = %v", err)
		}
		if section.Value == nil || *section.Value != expected {
			t.Errorf("Value = %v, want %v", section.Value, expected)
		}
		if section.File != "/base/config.yaml" {
			t.Errorf("File = %v, want /base/config.yaml", section.File)
		}
	})

	t.Run("loader failure propagates", func(t *testing.T) {
		section := &confkit.Section[string]{File: "config.yaml"}
		err := section.Hydrate("/base", func(path string) (*string, error) {
			return nil, os.ErrNotExist
		})
		if err == nil {
			t.Error("Hydrate() should surface loader errors")
		}
	})
}
