//go:build !turfrelease

package settings

const developmentBuild = true
