package settings_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/turf/internal/settings"
	"github.com/yacobolo/turf/internal/settings/mocks"
	"go.uber.org/mock/gomock"
)

func profileWithTemplate(template string) *settings.Settings {
	s := settings.Default()
	s.ClassNames.Template = template
	return &s
}

func TestStore_ReadsEachProfileOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	loader.EXPECT().Profile(settings.Development).Return(profileWithTemplate("dev-<id>"), nil).Times(1)
	loader.EXPECT().Profile(settings.Production).Return(profileWithTemplate("prod-<id>"), nil).Times(1)

	store := settings.NewStore(loader, true)

	first, err := store.Get()
	require.NoError(t, err)
	second, err := store.Get()
	require.NoError(t, err)

	assert.Equal(t, "dev-<id>", first.ClassNames.Template)
	assert.True(t, first.Equal(second))
}

func TestStore_CachesAbsentProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	loader.EXPECT().Profile(settings.Development).Return(nil, nil).Times(1)
	loader.EXPECT().Profile(settings.Production).Return(profileWithTemplate("prod-<id>"), nil).Times(1)

	store := settings.NewStore(loader, true)

	for range 3 {
		got, err := store.Get()
		require.NoError(t, err)
		assert.Equal(t, "prod-<id>", got.ClassNames.Template)
	}
}

func TestStore_ProductionBuildIgnoresDevelopmentProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	loader.EXPECT().Profile(settings.Development).Return(profileWithTemplate("dev-<id>"), nil)
	loader.EXPECT().Profile(settings.Production).Return(nil, nil)

	store := settings.NewStore(loader, false)

	got, err := store.Get()
	require.NoError(t, err)
	assert.True(t, settings.Default().Equal(got))
	assert.False(t, store.IsDevelopmentBuild())
}

func TestStore_ManifestError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	cause := errors.New("yaml: line 3: did not find expected key")
	loader.EXPECT().Profile(settings.Development).Return(nil, cause)

	store := settings.NewStore(loader, true)

	_, err := store.Get()
	require.Error(t, err)

	var settingsErr *settings.Error
	require.ErrorAs(t, err, &settingsErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not obtain turf settings from the manifest", settingsErr.Message())
}

func TestStore_ManifestErrorIsFinal(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	cause := errors.New("open turf.yaml: permission denied")
	loader.EXPECT().Profile(settings.Development).Return(nil, cause).Times(1)

	store := settings.NewStore(loader, true)

	_, first := store.Get()
	require.Error(t, first)

	_, second := store.Get()
	require.Error(t, second)
	assert.Same(t, first, second)
	assert.ErrorIs(t, second, cause)
}

func TestStore_MutatingResultDoesNotLeakIntoCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	prod := profileWithTemplate("prod-<id>")
	prod.LoadPaths = []string{"styles"}
	loader.EXPECT().Profile(settings.Development).Return(nil, nil)
	loader.EXPECT().Profile(settings.Production).Return(prod, nil)

	store := settings.NewStore(loader, false)

	first, err := store.Get()
	require.NoError(t, err)
	first.LoadPaths[0] = "mutated"

	second, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"styles"}, second.LoadPaths)
}

// countingLoader returns freshly allocated but equal profiles on every call.
type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Profile(p settings.Profile) (*settings.Settings, error) {
	l.calls.Add(1)
	if p == settings.Development {
		return nil, nil
	}
	return profileWithTemplate("prod-<id>"), nil
}

func TestStore_ConcurrentFirstAccess(t *testing.T) {
	loader := &countingLoader{}
	store := settings.NewStore(loader, true)

	const workers = 32
	results := make([]settings.Settings, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.Get()
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.True(t, results[0].Equal(r))
	}
	assert.GreaterOrEqual(t, loader.calls.Load(), int32(2))

	before := loader.calls.Load()
	_, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, before, loader.calls.Load(), "populated slots are never re-read")
}
