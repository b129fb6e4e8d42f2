package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/fragment"
	"github.com/vk/mapboot/internal/history"
)

func newTestStore(initialFragment string) (*Store, *history.Memory) {
	hist := history.NewMemory(initialFragment)
	return New(fragment.New(), hist), hist
}

func TestApplySnapshotsPrevious(t *testing.T) {
	s, _ := newTestStore("")

	s.Apply(appstate.State{"x": 1.0}, ApplyOptions{})
	s.Apply(appstate.State{"y": 2.0}, ApplyOptions{})

	assert.Equal(t, appstate.State{"x": 1.0}, s.Previous())
	assert.Equal(t, appstate.State{"x": 1.0, "y": 2.0}, s.Current())
}

func TestApplyReturnsDelta(t *testing.T) {
	s, _ := newTestStore("")

	s.Apply(appstate.State{"a": "1", "b": "2"}, ApplyOptions{})
	got := s.Apply(appstate.State{"b": "3"}, ApplyOptions{})

	assert.Equal(t, appstate.State{"b": "3"}, got, "apply returns the merged delta, not the full current state")
}

func TestApplyURLUpdateStringifiesDelta(t *testing.T) {
	// Regression guard: the history fragment reflects only the delta of
	// the triggering apply, not the accumulated state. This mirrors the
	// behavior of the original layer and must not be changed silently.
	s, hist := newTestStore("")

	s.Apply(appstate.State{"basemap": "ortho"}, ApplyOptions{})
	s.Apply(appstate.State{"lang": "de"}, ApplyOptions{Update: UpdatePush})

	assert.Equal(t, "lang=de", hist.Fragment())
	assert.NotContains(t, hist.Fragment(), "basemap")
}

func TestApplyHistoryModes(t *testing.T) {
	t.Run("push adds an entry", func(t *testing.T) {
		s, hist := newTestStore("a=1")
		s.Apply(appstate.State{"a": "2"}, ApplyOptions{Update: UpdatePush})
		assert.Equal(t, []string{"a=1", "a=2"}, hist.Entries())
	})

	t.Run("replace rewrites the entry", func(t *testing.T) {
		s, hist := newTestStore("a=1")
		s.Apply(appstate.State{"a": "2"}, ApplyOptions{Update: UpdateReplace})
		assert.Equal(t, []string{"a=2"}, hist.Entries())
	})

	t.Run("no update leaves history alone", func(t *testing.T) {
		s, hist := newTestStore("a=1")
		s.Apply(appstate.State{"a": "2"}, ApplyOptions{})
		assert.Equal(t, []string{"a=1"}, hist.Entries())
	})
}

func TestApplyBroadcastIsAsynchronous(t *testing.T) {
	s, _ := newTestStore("")

	var seen []appstate.State
	s.OnApply(func(delta appstate.State) {
		seen = append(seen, delta)
	})

	s.Apply(appstate.State{"x": 1.0}, ApplyOptions{})
	assert.Empty(t, seen, "observer must not run before apply returns")
	assert.Equal(t, 1, s.Pending())

	s.Flush()
	require.Len(t, seen, 1)
	assert.Equal(t, appstate.State{"x": 1.0}, seen[0])
	assert.Equal(t, 0, s.Pending())
}

func TestBroadcastFIFOOrdering(t *testing.T) {
	s, _ := newTestStore("")

	var order []string
	s.OnApply(func(delta appstate.State) {
		order = append(order, delta["seq"].(string))
	})

	for _, seq := range []string{"1", "2", "3", "4", "5"} {
		s.Apply(appstate.State{"seq": seq}, ApplyOptions{})
	}
	s.Flush()

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, order)
}

func TestDispatchDeliversInBackground(t *testing.T) {
	s, _ := newTestStore("")

	got := make(chan appstate.State, 3)
	s.OnApply(func(delta appstate.State) {
		got <- delta
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Dispatch(ctx)

	s.Apply(appstate.State{"seq": "1"}, ApplyOptions{})
	s.Apply(appstate.State{"seq": "2"}, ApplyOptions{})

	var order []string
	for i := 0; i < 2; i++ {
		select {
		case d := <-got:
			order = append(order, d["seq"].(string))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
	assert.Equal(t, []string{"1", "2"}, order)
}

func TestApplyLink(t *testing.T) {
	t.Run("parses and applies a fragment", func(t *testing.T) {
		s, _ := newTestStore("")
		delta, err := s.ApplyLink("map=7/1.000/2.000&basemap=ortho", ApplyOptions{})
		require.NoError(t, err)
		assert.Equal(t, 7.0, delta["zoom"])
		assert.Equal(t, "ortho", delta["basemap"])
		assert.NotContains(t, s.Current(), "map")
	})

	t.Run("parse failures propagate and leave state untouched", func(t *testing.T) {
		s, _ := newTestStore("")
		_, err := s.ApplyLink("bad=%zz", ApplyOptions{})
		require.Error(t, err)
		assert.Empty(t, s.Current())
		assert.Equal(t, 0, s.Pending())
	})
}

func TestApplyCurrentReparsesHistory(t *testing.T) {
	s, _ := newTestStore("#path/here&lang=de")

	delta, err := s.ApplyCurrent(ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, appstate.State{"path": "path/here", "lang": "de"}, delta)
	assert.Equal(t, appstate.State{"path": "path/here", "lang": "de"}, s.Current())
}

func TestGetCollectsSynchronously(t *testing.T) {
	s, _ := newTestStore("")

	s.OnCollect(func(acc appstate.State) {
		acc["zoom"] = 7.0
		acc["lat"] = 1.0
	})
	s.OnCollect(func(acc appstate.State) {
		acc["lon"] = 2.0
		acc["lat"] = 1.5 // later collectors win
	})

	got := s.Get()
	assert.Equal(t, appstate.State{"zoom": 7.0, "lat": 1.5, "lon": 2.0}, got)
}

func TestObserverReceivesCopy(t *testing.T) {
	s, _ := newTestStore("")

	s.OnApply(func(delta appstate.State) {
		delta["mutated"] = "yes"
	})
	s.Apply(appstate.State{"x": 1.0}, ApplyOptions{})
	s.Flush()

	assert.NotContains(t, s.Current(), "mutated")
}
