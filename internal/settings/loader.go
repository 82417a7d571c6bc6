package settings

//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks

// Profile names one of the two manifest profiles.
type Profile int

const (
	// Production is the `turf` section, used by release builds.
	Production Profile = iota
	// Development is the `turf-dev` section, used by development builds.
	Development
)

// Key returns the manifest section holding the profile.
func (p Profile) Key() string {
	if p == Development {
		return "turf-dev"
	}
	return "turf"
}

func (p Profile) String() string {
	if p == Development {
		return "development"
	}
	return "production"
}

// Loader reads a single profile from the build manifest. A nil result with
// a nil error means the manifest does not declare the profile.
type Loader interface {
	Profile(p Profile) (*Settings, error)
}
