package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/turf/internal/watch"
)

func TestDebouncer_Flush(t *testing.T) {
	var got [][]string
	d := watch.NewDebouncer(time.Hour, func(keys []string) {
		got = append(got, keys)
	})

	d.Add("b.scss")
	d.Add("a.scss")
	d.Add("b.scss")
	d.Flush()

	require.Len(t, got, 1)
	assert.Equal(t, []string{"a.scss", "b.scss"}, got[0])

	d.Flush()
	assert.Len(t, got, 1, "nothing pending")
}

func TestDebouncer_FiresAfterWindow(t *testing.T) {
	fired := make(chan []string, 1)
	d := watch.NewDebouncer(10*time.Millisecond, func(keys []string) {
		fired <- keys
	})

	d.Add("a.scss")
	d.Add("c.scss")

	select {
	case keys := <-fired:
		assert.Equal(t, []string{"a.scss", "c.scss"}, keys)
	case <-time.After(5 * time.Second):
		t.Fatal("debouncer did not fire")
	}
}

func newWatcher(t *testing.T) *watch.Watcher {
	t.Helper()
	w, err := watch.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWatcher_TrackAndAffected(t *testing.T) {
	dir := t.TempDir()
	tokens := filepath.Join(dir, "_tokens.scss")
	button := filepath.Join(dir, "button.scss")
	card := filepath.Join(dir, "card.scss")

	w := newWatcher(t)
	require.NoError(t, w.Track("button", []string{tokens, button}))
	require.NoError(t, w.Track("card", []string{tokens, card, card}))

	assert.Equal(t, []string{"button", "card"}, w.Affected(tokens))
	assert.Equal(t, []string{"card"}, w.Affected(card))
	assert.Empty(t, w.Affected(filepath.Join(dir, "other.scss")))

	// Replacing a set drops the old edges.
	require.NoError(t, w.Track("card", []string{card}))
	assert.Equal(t, []string{"button"}, w.Affected(tokens))

	require.NoError(t, w.Track("button", nil))
	assert.Empty(t, w.Affected(tokens))
}

func TestWatcher_TrackMissingDirectory(t *testing.T) {
	w := newWatcher(t)
	err := w.Track("x", []string{filepath.Join(t.TempDir(), "gone", "a.scss")})
	require.Error(t, err)
}

func TestWatcher_RunRebuildsAffectedOwners(t *testing.T) {
	dir := t.TempDir()
	tokens := filepath.Join(dir, "_tokens.scss")
	require.NoError(t, os.WriteFile(tokens, []byte(".a{}"), 0644))

	w := newWatcher(t)
	require.NoError(t, w.Track("button", []string{tokens}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilt := make(chan []string, 8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run(ctx, 10*time.Millisecond, func(owners []string) {
			rebuilt <- owners
		})
	}()

	require.NoError(t, os.WriteFile(tokens, []byte(".b{}"), 0644))

	select {
	case owners := <-rebuilt:
		assert.Equal(t, []string{"button"}, owners)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after write")
	}

	cancel()
	wg.Wait()
}
