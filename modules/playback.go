package modules

import (
	"time"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/CyCoreSystems/ari/v5/rid"
)

// playbackTimeout bounds the wait for a completion event. The subscription
// starts after Play has been issued, so a completion delivered in that window
// is lost; announcements are a few seconds long and the follow-up must still
// run.
var playbackTimeout = 30 * time.Second

// PlayToChannel starts a named sound on one channel and returns the
// cancellable playback handle.
func PlayToChannel(handle *ari.ChannelHandle, sound string) (*ari.PlaybackHandle, error) {
	return handle.Play(rid.New(rid.Playback), "sound:"+sound)
}

// PlayToBridge starts a named sound on the whole bridge.
func PlayToBridge(handle *ari.BridgeHandle, sound string) (*ari.PlaybackHandle, error) {
	return handle.Play(rid.New(rid.Playback), "sound:"+sound)
}

// OnPlaybackFinished runs then once the playback completes or is stopped,
// or after playbackTimeout if the completion event never arrives.
func OnPlaybackFinished(playback *ari.PlaybackHandle, then func()) {
	go func() {
		finishedSub := playback.Subscribe(ari.Events.PlaybackFinished)
		defer finishedSub.Cancel()
		timeout := time.NewTimer(playbackTimeout)
		defer timeout.Stop()
		select {
		case <-finishedSub.Events():
		case <-timeout.C:
		}
		then()
	}()
}
