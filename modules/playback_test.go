package modules

import (
	"testing"
	"time"

	"github.com/CyCoreSystems/ari/v5"
)

func waitForCall(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up never ran")
	}
}

func TestOnPlaybackFinishedRunsFollowUp(t *testing.T) {
	t.Parallel()
	sub := newStubSubscription()
	sub.events <- nil
	playback := ari.NewPlaybackHandle(
		ari.NewKey(ari.PlaybackKey, "pb1"), &stubPlayback{sub: sub}, nil)

	done := make(chan struct{})
	OnPlaybackFinished(playback, func() {
		close(done)
	})
	waitForCall(t, done)
}

func TestOnPlaybackFinishedTimesOut(t *testing.T) {
	saved := playbackTimeout
	playbackTimeout = 20 * time.Millisecond
	defer func() {
		playbackTimeout = saved
	}()

	// the completion event never arrives
	playback := ari.NewPlaybackHandle(
		ari.NewKey(ari.PlaybackKey, "pb1"), &stubPlayback{sub: newStubSubscription()}, nil)

	done := make(chan struct{})
	OnPlaybackFinished(playback, func() {
		close(done)
	})
	waitForCall(t, done)
}
