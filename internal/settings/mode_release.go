//go:build turfrelease

package settings

const developmentBuild = false
