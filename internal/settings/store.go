package settings

import (
	"fmt"
	"sync/atomic"
)

// Error is returned when the manifest cannot be read or parsed.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return e.Message() + ": " + e.Err.Error()
}

// Message returns the error text without the underlying cause.
func (e *Error) Message() string {
	return "could not obtain turf settings from the manifest"
}

func (e *Error) Unwrap() error { return e.Err }

// entry is a populated slot. A nil settings pointer records that the
// manifest has no such profile; a non-nil err records that reading it
// failed, which is final.
type entry struct {
	settings *Settings
	err      error
}

// slot transitions once from empty to populated.
type slot struct {
	value atomic.Pointer[entry]
}

// Store caches the two manifest profiles for the lifetime of the process.
type Store struct {
	loader             Loader
	isDevelopmentBuild bool

	production  slot
	development slot
}

// NewStore creates a store that reads profiles through loader.
func NewStore(loader Loader, isDevelopmentBuild bool) *Store {
	return &Store{
		loader:             loader,
		isDevelopmentBuild: isDevelopmentBuild,
	}
}

// Get returns the effective settings for the build mode. The manifest is
// consulted at most once per profile.
func (s *Store) Get() (Settings, error) {
	dev, err := s.profile(Development)
	if err != nil {
		return Settings{}, err
	}

	prod, err := s.profile(Production)
	if err != nil {
		return Settings{}, err
	}

	return Choose(dev, prod, s.isDevelopmentBuild), nil
}

// IsDevelopmentBuild reports the build mode the store selects for.
func (s *Store) IsDevelopmentBuild() bool {
	return s.isDevelopmentBuild
}

func (s *Store) slotFor(p Profile) *slot {
	if p == Development {
		return &s.development
	}
	return &s.production
}

func (s *Store) profile(p Profile) (*Settings, error) {
	sl := s.slotFor(p)
	if e := sl.value.Load(); e != nil {
		return e.result()
	}

	loaded, err := s.loader.Profile(p)
	if err != nil {
		return fail(sl, &Error{Err: err}).result()
	}

	return populate(sl, p, loaded).result()
}

// populate stores loaded in the slot unless another caller got there first.
// A different value in an already-populated slot means the build changed
// under us, which is unrecoverable.
func populate(sl *slot, p Profile, loaded *Settings) *entry {
	e := &entry{settings: loaded}
	if sl.value.CompareAndSwap(nil, e) {
		return e
	}

	existing := sl.value.Load()
	if existing.err != nil {
		return existing
	}
	if !existing.equal(e) {
		panic(fmt.Sprintf("turf: %s settings have already been set to a different value", p))
	}
	return existing
}

// fail records a read error in the slot unless another caller populated it
// first. Later reads return the error without consulting the loader.
func fail(sl *slot, err error) *entry {
	e := &entry{err: err}
	if sl.value.CompareAndSwap(nil, e) {
		return e
	}
	return sl.value.Load()
}

func (e *entry) result() (*Settings, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.settings == nil {
		return nil, nil
	}
	c := e.settings.Clone()
	return &c, nil
}

func (e *entry) equal(other *entry) bool {
	if e.settings == nil || other.settings == nil {
		return e.settings == nil && other.settings == nil
	}
	return e.settings.Equal(*other.settings)
}
