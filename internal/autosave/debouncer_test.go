package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	saves []string
	ch    chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 16)} }

func (r *recorder) save(_ context.Context, content string) error {
	r.mu.Lock()
	r.saves = append(r.saves, content)
	r.mu.Unlock()
	r.ch <- content
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

const quiet = 40 * time.Millisecond

func TestDebouncer_OnlyLastChangeInWindowSaves(t *testing.T) {
	rec := newRecorder()
	d := New(Opts{QuietPeriod: quiet, Save: rec.save})
	defer d.Stop()

	d.Notify("a")
	d.Notify("ab")
	d.Notify("abc")
	require.True(t, d.Pending())

	select {
	case got := <-rec.ch:
		require.Equal(t, "abc", got)
	case <-time.After(2 * time.Second):
		t.Fatalf("save never fired")
	}

	time.Sleep(3 * quiet)
	require.Equal(t, 1, rec.count())
	require.False(t, d.Pending())
}

func TestDebouncer_RearmsOnEveryChange(t *testing.T) {
	rec := newRecorder()
	q := 150 * time.Millisecond
	d := New(Opts{QuietPeriod: q, Save: rec.save})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Notify("draft")
		time.Sleep(q / 5)
	}
	// Still inside a quiet window that keeps getting pushed out.
	require.Zero(t, rec.count())

	select {
	case <-rec.ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("save never fired")
	}
	require.Equal(t, 1, rec.count())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := New(Opts{QuietPeriod: quiet, Save: rec.save})

	d.Notify("unsaved")
	d.Stop()
	time.Sleep(3 * quiet)
	require.Zero(t, rec.count())

	// Changes after unmount are ignored.
	d.Notify("late")
	time.Sleep(3 * quiet)
	require.Zero(t, rec.count())
}

func TestDebouncer_FlushSavesImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(Opts{QuietPeriod: time.Hour, Save: rec.save})
	defer d.Stop()

	require.NoError(t, d.Flush(context.Background()))
	require.Zero(t, rec.count())

	d.Notify("plan")
	require.NoError(t, d.Flush(context.Background()))
	require.Equal(t, "plan", <-rec.ch)
	require.False(t, d.Pending())
}

func TestDebouncer_FlushDuringTimerSaveKeepsNewest(t *testing.T) {
	var (
		mu      sync.Mutex
		last    string
		started = make(chan string, 4)
		release = make(chan struct{})
	)
	d := New(Opts{QuietPeriod: quiet, Save: func(_ context.Context, content string) error {
		started <- content
		if content == "A" {
			<-release
		}
		mu.Lock()
		last = content
		mu.Unlock()
		return nil
	}})
	defer d.Stop()

	d.Notify("A")
	select {
	case got := <-started:
		require.Equal(t, "A", got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timer save never started")
	}

	d.Notify("AB")
	flushed := make(chan error, 1)
	go func() { flushed <- d.Flush(context.Background()) }()

	// The flush must wait for the in-flight save instead of racing it.
	select {
	case got := <-started:
		t.Fatalf("save %q started while another was running", got)
	case <-time.After(3 * quiet):
	}

	close(release)
	select {
	case err := <-flushed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("flush never returned")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "AB", last)
	require.False(t, d.Pending())
}

func TestDebouncer_SaveErrorIsReturnedFromFlush(t *testing.T) {
	boom := errors.New("disk full")
	d := New(Opts{QuietPeriod: time.Hour, Save: func(context.Context, string) error { return boom }})
	defer d.Stop()

	d.Notify("x")
	require.ErrorIs(t, d.Flush(context.Background()), boom)
}

func TestDebouncer_NilIsSafe(t *testing.T) {
	var d *Debouncer
	d.Notify("x")
	d.Stop()
	require.False(t, d.Pending())
	require.NoError(t, d.Flush(context.Background()))
}
