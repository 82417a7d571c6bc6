package settings

import (
	"os"
	"strings"
	"sync"
)

// DevelopmentBuild reports whether this process runs a development build.
// The answer comes from the build tags (see mode_dev.go / mode_release.go)
// unless TURF_PROFILE overrides it, and never changes once computed.
var DevelopmentBuild = sync.OnceValue(func() bool {
	return modeFromEnv(os.Getenv("TURF_PROFILE"), developmentBuild)
})

func modeFromEnv(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "development", "debug":
		return true
	case "release", "prod", "production":
		return false
	default:
		return fallback
	}
}
