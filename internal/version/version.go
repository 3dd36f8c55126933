package version

import (
	"net/url"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is set at build time with:
// -ldflags "-X github.com/sheetfold/sheetfold/internal/version.Version=vX.Y.Z"
var Version = "dev"

func Current() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}

// AssetSuffix is the cache-busting query appended to the client script and
// stylesheet URLs. Development builds get none so edits show up on reload.
func AssetSuffix() string {
	v := Current()
	if !semver.IsValid(v) {
		return ""
	}
	return "?v=" + url.QueryEscape(v)
}
