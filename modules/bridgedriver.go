package modules

import (
	"sync"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/ws"
)

// BridgeDriver issues bridge-level platform commands for one conference. It
// keeps the in-flight lock announcement handle so a rapid repeat press can
// cancel it.
type BridgeDriver struct {
	bridge *types.ConfBridge
	feed   *ws.Feed

	mu           sync.Mutex
	lockPlayback *ari.PlaybackHandle
}

func NewBridgeDriver(bridge *types.ConfBridge, feed *ws.Feed) *BridgeDriver {
	value := BridgeDriver{
		bridge: bridge,
		feed:   feed}
	return &value
}

// Seat places the session's channel into the mixing bridge.
func (d *BridgeDriver) Seat(session *types.Session) error {
	err := d.bridge.Bridge.AddChannel(session.Id())
	if err != nil {
		return eris.Wrap(err, "failed to add channel to bridge")
	}
	return nil
}

// BridgeIsLocked tells the channel the bridge is locked, then hangs it up
// once the announcement finishes.
func (d *BridgeDriver) BridgeIsLocked(session *types.Session) {
	settings := d.bridge.Settings
	playback, err := PlayToChannel(session.Channel, settings.LockedSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play locked sound: "+err.Error())
		session.SafeHangup()
		return
	}
	OnPlaybackFinished(playback, func() {
		err := session.SafeHangup()
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to hang up locked-out channel: "+err.Error())
		}
	})
}

// KickLast removes the most recently joined channel still seated in the
// bridge, announces the kick to it and hangs it up once the announcement
// completes. An empty join stack is a no-op.
func (d *BridgeDriver) KickLast(registry types.SessionRegistry) bool {
	bridge := d.bridge
	settings := bridge.Settings
	chanId, handle, ok := bridge.PopLastJoined()
	if !ok {
		logger.Log(logrus.DebugLevel, "kick requested on empty bridge")
		return false
	}

	if session, ok := registry.Get(chanId); ok {
		session.Machine.Done()
	}

	err := bridge.Bridge.RemoveChannel(chanId)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to remove kicked channel: "+err.Error())
	}
	d.feed.Broadcast(bridge.Id, "kick", chanId)

	playback, err := PlayToChannel(handle, settings.KickedSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play kicked sound: "+err.Error())
		handle.Hangup()
		return true
	}
	OnPlaybackFinished(playback, func() {
		// The channel may have been re-seated while the announcement was
		// playing. Only hang up if it is still out of the bridge.
		if bridge.HasChannel(chanId) {
			logger.Log(logrus.DebugLevel, "kicked channel re-seated, skipping hangup")
			return
		}
		handle.Hangup()
	})
	return true
}

// ToggleLock flips the bridge admission lock and announces the new state,
// cancelling any still-playing lock announcement from a previous press.
func (d *BridgeDriver) ToggleLock() bool {
	bridge := d.bridge
	settings := bridge.Settings
	locked := bridge.ToggleLocked()

	sound := settings.NowUnlockedSound
	eventType := "unlock"
	if locked {
		sound = settings.NowLockedSound
		eventType = "lock"
	}

	d.mu.Lock()
	if d.lockPlayback != nil {
		err := d.lockPlayback.Stop()
		if err != nil {
			logger.Log(logrus.DebugLevel, "could not stop lock announcement: "+err.Error())
		}
	}
	playback, err := PlayToBridge(bridge.Bridge, sound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play lock sound: "+err.Error())
		playback = nil
	}
	d.lockPlayback = playback
	d.mu.Unlock()

	d.feed.Broadcast(bridge.Id, eventType, "")
	return locked
}
