package fsms

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/modules"
	"lineblocs.com/confbridge/types"
)

const (
	BridgeStateEmpty  = "empty"
	BridgeStateSingle = "single"
	BridgeStateMulti  = "multi"
)

// BridgeFSM governs one conference bridge's occupancy states and the side
// effects gated by them: recording start when the bridge first fills, hold
// music for a lone occupant, lock and recording flag resets when it empties.
type BridgeFSM struct {
	machine  *fsm.FSM
	bridge   *types.ConfBridge
	recorder *modules.RecordingDriver
	registry types.SessionRegistry
}

func NewBridgeFSM(bridge *types.ConfBridge, recorder *modules.RecordingDriver, registry types.SessionRegistry) *BridgeFSM {
	b := BridgeFSM{
		bridge:   bridge,
		recorder: recorder,
		registry: registry}

	b.machine = fsm.NewFSM(
		BridgeStateEmpty,
		fsm.Events{
			{Name: "userJoin", Src: []string{BridgeStateEmpty}, Dst: BridgeStateSingle},
			{Name: "userJoin", Src: []string{BridgeStateSingle}, Dst: BridgeStateMulti},
			{Name: "userExit", Src: []string{BridgeStateMulti}, Dst: BridgeStateSingle},
			{Name: "userExit", Src: []string{BridgeStateSingle}, Dst: BridgeStateEmpty},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				logger.Log(logrus.DebugLevel, "bridge "+bridge.Id+" entered state "+e.Dst)
			},
			"enter_" + BridgeStateEmpty: func(ctx context.Context, e *fsm.Event) {
				b.resetBridge()
			},
			"leave_" + BridgeStateEmpty: func(ctx context.Context, e *fsm.Event) {
				b.beginOccupancy()
			},
			"enter_" + BridgeStateSingle: func(ctx context.Context, e *fsm.Event) {
				b.startHoldMusic()
			},
			"leave_" + BridgeStateSingle: func(ctx context.Context, e *fsm.Event) {
				b.stopHoldMusic()
			},
		},
	)
	return &b
}

func (b *BridgeFSM) State() string {
	return b.machine.Current()
}

func stateForCount(count int) string {
	switch {
	case count <= 0:
		return BridgeStateEmpty
	case count == 1:
		return BridgeStateSingle
	default:
		return BridgeStateMulti
	}
}

// HandleJoin advances occupancy state using the post-event channel count from
// the platform event, then announces the recording status to the joiner.
func (b *BridgeFSM) HandleJoin(session *types.Session, channelCount int) {
	b.advance("userJoin", stateForCount(channelCount))
	if channelCount <= 1 {
		// The first join already hears the bridge-wide announcement played
		// when the recording starts.
		return
	}
	enabled, _ := b.bridge.RecordingState()
	if enabled && session != nil && !session.Settings.Quiet {
		b.recorder.AnnounceTo(session)
	}
}

// HandleExit winds occupancy state down. ownBridge is false when the
// remaining channel reported by the event belongs to some other bridge.
func (b *BridgeFSM) HandleExit(channelCount int, ownBridge bool) {
	if !ownBridge {
		return
	}
	b.advance("userExit", stateForCount(channelCount))
}

// advance fires event until the machine reaches desired. The count comes
// from the platform event payload, so delivery order decides the target, not
// a locally duplicated counter.
func (b *BridgeFSM) advance(event string, desired string) {
	ctx := context.Background()
	for attempts := 0; b.machine.Current() != desired && attempts < 3; attempts++ {
		err := b.machine.Event(ctx, event)
		if err != nil {
			logger.Log(logrus.DebugLevel, "bridge "+b.bridge.Id+" cannot reach "+desired+": "+err.Error())
			return
		}
	}
}

// resetBridge restores the defaults when everyone has left.
func (b *BridgeFSM) resetBridge() {
	b.bridge.SetLocked(false)
	b.bridge.SetRecordingState(false, true)
}

// beginOccupancy runs when the very first participant is about to be seated.
// A fresh recording is started for every occupancy epoch when the profile
// asks for one.
func (b *BridgeFSM) beginOccupancy() {
	if !b.bridge.Settings.RecordConference {
		return
	}
	err := b.recorder.Enable()
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to start recording: "+err.Error())
	}
}

func (b *BridgeFSM) startHoldMusic() {
	if !b.bridge.Settings.Moh {
		return
	}
	for _, session := range b.registry.ForRoom(b.bridge.Id) {
		if !b.bridge.HasChannel(session.Id()) || !session.Settings.Moh {
			continue
		}
		err := session.Channel.MOH("default")
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to start hold music: "+err.Error())
		}
	}
}

func (b *BridgeFSM) stopHoldMusic() {
	if !b.bridge.Settings.Moh {
		return
	}
	for _, session := range b.registry.ForRoom(b.bridge.Id) {
		if !b.bridge.HasChannel(session.Id()) || !session.Settings.Moh {
			continue
		}
		err := session.Channel.StopMOH()
		if err != nil {
			logger.Log(logrus.DebugLevel, "failed to stop hold music: "+err.Error())
		}
	}
}
