package main

import "path/filepath"

func jdksDir(home string) string {
	return filepath.Join(home, "jdks")
}

func defaultLinkPath(home string) string {
	return filepath.Join(home, "default")
}

func cachePath(home string) string {
	return filepath.Join(home, "cache", "releases.json")
}
