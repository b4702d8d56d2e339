package fsms

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/groups"
	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/modules"
	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/utils"
)

const (
	StateInactive = "inactive"
	StateWaiting  = "waiting"
	StateActive   = "active"
	StateAdmin    = "admin"
)

// ParticipantFSM drives one call leg through inactive, waiting, active and
// admin. Entry actions run explicitly after a successful transition; all
// public entry points are serialized by one mutex, standing in for the
// source platform's cooperative dispatcher.
type ParticipantFSM struct {
	machine  *fsm.FSM
	session  *types.Session
	bridge   *types.ConfBridge
	driver   *modules.BridgeDriver
	media    *modules.ChannelMedia
	recorder *modules.RecordingDriver
	pin      *modules.PinAuth
	menus    *utils.Menus
	coord    *groups.Coordinator
	registry types.SessionRegistry

	mu sync.Mutex
}

func NewParticipantFSM(
	session *types.Session,
	bridge *types.ConfBridge,
	driver *modules.BridgeDriver,
	media *modules.ChannelMedia,
	recorder *modules.RecordingDriver,
	menus *utils.Menus,
	coord *groups.Coordinator,
	registry types.SessionRegistry) *ParticipantFSM {

	p := ParticipantFSM{
		session:  session,
		bridge:   bridge,
		driver:   driver,
		media:    media,
		recorder: recorder,
		pin:      modules.NewPinAuth(),
		menus:    menus,
		coord:    coord,
		registry: registry}

	p.machine = fsm.NewFSM(
		StateInactive,
		fsm.Events{
			{Name: "ready", Src: []string{StateInactive}, Dst: StateWaiting},
			{Name: "seated", Src: []string{StateWaiting}, Dst: StateActive},
			{Name: "adminMenu", Src: []string{StateActive}, Dst: StateAdmin},
			{Name: "exitAdmin", Src: []string{StateAdmin}, Dst: StateActive},
			{Name: "hold", Src: []string{StateActive, StateAdmin}, Dst: StateWaiting},
			{Name: "done", Src: []string{StateInactive, StateWaiting, StateActive, StateAdmin}, Dst: StateInactive},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				logger.Log(logrus.DebugLevel, "channel "+session.Id()+" entered state "+e.Dst)
			},
		},
	)
	return &p
}

func (p *ParticipantFSM) State() string {
	return p.machine.Current()
}

// Ready starts the session's lifecycle once its listeners are attached.
func (p *ParticipantFSM) Ready() {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.event("ready")
	if err != nil {
		return
	}
	p.startWaitingWatchdog()
	p.enterWaiting()
}

// Done returns the machine to inactive from any state.
func (p *ParticipantFSM) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.event("done")
}

// Dtmf dispatches one keypad digit against the menu for the current state.
func (p *ParticipantFSM) Dtmf(digit string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.machine.Current() {
	case StateWaiting:
		p.waitingDtmf(digit)
	case StateActive:
		p.activeDtmf(digit)
	case StateAdmin:
		p.adminDtmf(digit)
	default:
		logger.Log(logrus.DebugLevel, "ignoring DTMF "+digit+" in state "+p.machine.Current())
	}
}

// LeaderJoined resumes a follower held in waiting.
func (p *ParticipantFSM) LeaderJoined() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.session.IsFollower() || p.machine.Current() != StateWaiting {
		return
	}
	p.stopHoldMusic()
	p.admit()
}

// NoLeaders pulls an active follower back out of the bridge until a leader
// returns.
func (p *ParticipantFSM) NoLeaders() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.session.IsFollower() {
		return
	}
	current := p.machine.Current()
	if current != StateActive && current != StateAdmin {
		return
	}
	err := p.bridge.Bridge.RemoveChannel(p.session.Id())
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to remove follower from bridge: "+err.Error())
	}
	err = p.event("hold")
	if err != nil {
		return
	}
	p.holdForLeader()
}

// enterWaiting is the waiting-state entry action.
func (p *ParticipantFSM) enterWaiting() {
	if p.session.IsFollower() && !p.coord.HasLeaders() {
		p.holdForLeader()
		return
	}
	p.admit()
}

// admit runs the admission checks: lock, capacity, PIN.
func (p *ParticipantFSM) admit() {
	session := p.session
	bridge := p.bridge
	if bridge.IsLocked() {
		p.driver.BridgeIsLocked(session)
		return
	}
	if bridge.Settings.MaxMembers > 0 && bridge.ChannelCount() >= bridge.Settings.MaxMembers {
		logger.Log(logrus.InfoLevel, "bridge "+bridge.Id+" at capacity, rejecting "+session.Id())
		session.SafeHangup()
		return
	}
	if !session.Settings.PinAuth {
		p.seat()
		return
	}
	p.pin.Prompt(session, bridge.Settings)
}

// seat places the channel into the bridge and activates the session.
func (p *ParticipantFSM) seat() {
	err := p.driver.Seat(p.session)
	if err != nil {
		// The leg stays in waiting; the watchdog bails it out.
		logger.Log(logrus.ErrorLevel, "failed to seat channel: "+err.Error())
		return
	}
	p.event("seated")
}

func (p *ParticipantFSM) waitingDtmf(digit string) {
	session := p.session
	settings := p.bridge.Settings
	if p.menus.WaitingAction(digit) != utils.ActionVerifyPin {
		p.pin.AddDigit(session, digit)
		return
	}
	if !session.Settings.PinAuth {
		logger.Log(logrus.DebugLevel, "verify digit pressed without PIN auth, ignoring")
		return
	}
	if p.pin.Check(session, settings) {
		logger.Log(logrus.DebugLevel, "correct PIN")
		p.seat()
		return
	}
	logger.Log(logrus.DebugLevel, "incorrect PIN")
	p.pin.Invalid(session, settings)
}

func (p *ParticipantFSM) activeDtmf(digit string) {
	session := p.session
	switch p.menus.ActiveAction(digit) {
	case utils.ActionAdminMenu:
		if !session.Settings.Admin {
			logger.Log(logrus.DebugLevel, "non-admin pressed admin digit, ignoring")
			return
		}
		p.event("adminMenu")
	case utils.ActionToggleMute:
		p.media.ToggleMute(session)
	case utils.ActionToggleDeafMute:
		p.media.ToggleDeafMute(session)
	case utils.ActionLeave:
		p.leave()
	case utils.ActionDecListen:
		p.media.DecrementListenVolume(session)
	case utils.ActionResetListen:
		p.media.ResetListenVolume(session)
	case utils.ActionIncListen:
		p.media.IncrementListenVolume(session)
	case utils.ActionDecTalk:
		p.media.DecrementTalkVolume(session)
	case utils.ActionResetTalk:
		p.media.ResetTalkVolume(session)
	case utils.ActionIncTalk:
		p.media.IncrementTalkVolume(session)
	case utils.ActionPitchShift:
		p.media.CyclePitch(session)
	default:
		logger.Log(logrus.DebugLevel, "unmapped active digit: "+digit)
	}
}

func (p *ParticipantFSM) adminDtmf(digit string) {
	switch p.menus.AdminAction(digit) {
	case utils.ActionExitAdminMenu:
		p.event("exitAdmin")
	case utils.ActionKickLast:
		p.driver.KickLast(p.registry)
	case utils.ActionToggleLock:
		p.driver.ToggleLock()
	case utils.ActionToggleRecord:
		p.recorder.Toggle()
	default:
		logger.Log(logrus.DebugLevel, "unmapped admin digit: "+digit)
	}
}

// leave sends the channel back to the dialplan and ends the session.
func (p *ParticipantFSM) leave() {
	err := p.session.Channel.Continue(
		utils.ContinueContext(),
		utils.ContinueExtension(),
		utils.ContinuePriority())
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to continue channel: "+err.Error())
	}
	p.event("done")
}

// holdForLeader parks a follower until a leader is present.
func (p *ParticipantFSM) holdForLeader() {
	session := p.session
	settings := p.bridge.Settings
	_, err := modules.PlayToChannel(session.Channel, settings.WaitForLeaderSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play wait-for-leader sound: "+err.Error())
	}
	if settings.Moh && session.Settings.Moh {
		err = session.Channel.MOH("default")
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to start hold music: "+err.Error())
		}
	}
}

func (p *ParticipantFSM) stopHoldMusic() {
	if !p.bridge.Settings.Moh || !p.session.Settings.Moh {
		return
	}
	err := p.session.Channel.StopMOH()
	if err != nil {
		logger.Log(logrus.DebugLevel, "failed to stop hold music: "+err.Error())
	}
}

// startWaitingWatchdog hangs up a leg stuck in waiting. Followers are
// exempt; they wait for their leader indefinitely.
func (p *ParticipantFSM) startWaitingWatchdog() {
	timeout := utils.WaitingTimeout()
	if timeout <= 0 || p.session.IsFollower() {
		return
	}
	session := p.session
	time.AfterFunc(time.Duration(timeout)*time.Second, func() {
		if p.State() != StateWaiting {
			return
		}
		logger.Log(logrus.InfoLevel, "channel "+session.Id()+" stuck in waiting, hanging up")
		session.SafeHangup()
	})
}

// event fires a transition, treating a same-state result as success.
func (p *ParticipantFSM) event(name string) error {
	err := p.machine.Event(context.Background(), name)
	if err != nil {
		if _, ok := err.(fsm.NoTransitionError); ok {
			return nil
		}
		logger.Log(logrus.DebugLevel, "transition "+name+" rejected: "+err.Error())
		return err
	}
	return nil
}
