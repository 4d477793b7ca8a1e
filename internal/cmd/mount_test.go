package cmd

import (
	"testing"
)

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		path1    string
		path2    string
		expected bool
	}{
		{
			name:     "identical paths",
			path1:    "/srv/saf",
			path2:    "/srv/saf",
			expected: true,
		},
		{
			name:     "mountpoint inside archive",
			path1:    "/srv/saf/data",
			path2:    "/srv/saf",
			expected: true,
		},
		{
			name:     "archive inside mountpoint",
			path1:    "/srv/saf",
			path2:    "/srv/saf/mount",
			expected: true,
		},
		{
			name:     "completely separate paths",
			path1:    "/srv/saf",
			path2:    "/mnt/mount",
			expected: false,
		},
		{
			name:     "sibling directories",
			path1:    "/srv/saf",
			path2:    "/tmp/mount",
			expected: false,
		},
		{
			name:     "relative paths - overlapping",
			path1:    "archive",
			path2:    "archive/mount",
			expected: true,
		},
		{
			name:     "shared name prefix",
			path1:    "/srv/saf",
			path2:    "/srv/saf-mount",
			expected: false,
		},
		{
			name:     "relative paths - separate",
			path1:    "archive",
			path2:    "mount",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pathsOverlap(tt.path1, tt.path2)
			if result != tt.expected {
				t.Errorf("pathsOverlap(%q, %q) = %v, expected %v", tt.path1, tt.path2, result, tt.expected)
			}
		})
	}
}
