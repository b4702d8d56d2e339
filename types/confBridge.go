package types

import (
	"sync"

	"github.com/CyCoreSystems/ari/v5"
)

// ConfBridge is one active conference room. The channel map, the lastJoined
// stack and the lock/recording flags are shared between the bridge event loop
// and session DTMF handlers, so every mutation goes through the guarded
// methods below.
type ConfBridge struct {
	Id       string
	Bridge   *ari.BridgeHandle
	Settings *BridgeProfile

	mu               sync.Mutex
	locked           bool
	recordingEnabled bool
	recordingPaused  bool
	currentRecording string
	lastJoined       []string
	channels         map[string]*ari.ChannelHandle
}

func NewConfBridge(id string, bridge *ari.BridgeHandle, settings *BridgeProfile) *ConfBridge {
	value := ConfBridge{
		Id:         id,
		Bridge:     bridge,
		Settings:   settings,
		lastJoined: make([]string, 0),
		channels:   make(map[string]*ari.ChannelHandle)}
	return &value
}

// AddChannel seats a channel: it is appended to the join stack and inserted
// into the channel map in one step.
func (b *ConfBridge) AddChannel(id string, handle *ari.ChannelHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.channels[id]; ok {
		return
	}
	b.channels[id] = handle
	b.lastJoined = append(b.lastJoined, id)
}

// RemoveChannel unseats a channel from both structures.
func (b *ConfBridge) RemoveChannel(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.channels, id)
	stack := make([]string, 0, len(b.lastJoined))
	for _, item := range b.lastJoined {
		if item != id {
			stack = append(stack, item)
		}
	}
	b.lastJoined = stack
}

// PopLastJoined returns the most recently joined channel that is still
// seated, removing it from both structures. ok is false when nobody is
// seated.
func (b *ConfBridge) PopLastJoined() (string, *ari.ChannelHandle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.lastJoined) > 0 {
		last := len(b.lastJoined) - 1
		id := b.lastJoined[last]
		b.lastJoined = b.lastJoined[:last]
		if handle, ok := b.channels[id]; ok {
			delete(b.channels, id)
			return id, handle, true
		}
	}
	return "", nil, false
}

func (b *ConfBridge) HasChannel(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.channels[id]
	return ok
}

func (b *ConfBridge) ChannelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.channels)
}

func (b *ConfBridge) IsLocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// ToggleLocked flips the admission lock and returns the new value.
func (b *ConfBridge) ToggleLocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = !b.locked
	return b.locked
}

func (b *ConfBridge) SetLocked(locked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = locked
}

func (b *ConfBridge) RecordingState() (bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recordingEnabled, b.recordingPaused
}

func (b *ConfBridge) SetRecordingState(enabled bool, paused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordingEnabled = enabled
	b.recordingPaused = paused
}

func (b *ConfBridge) CurrentRecording() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentRecording
}

func (b *ConfBridge) SetCurrentRecording(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentRecording = name
}
