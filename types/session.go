package types

import (
	"errors"

	"github.com/CyCoreSystems/ari/v5"
)

// MediaState holds the per-session audio counters mutated by the channel
// media module.
type MediaState struct {
	ListenVolume int
	TalkVolume   int
	PitchStage   int
	Muted        bool
	DeafMuted    bool
}

// DefaultVolume is unity gain for the Asterisk VOLUME function.
const DefaultVolume = 1

// PinState holds the per-session PIN entry counters.
type PinState struct {
	Digits  string
	Retries int
}

// ParticipantMachine is the state machine driving one session. The concrete
// machine lives in the fsms package; sessions only see this surface.
type ParticipantMachine interface {
	Ready()
	Dtmf(digit string)
	Done()
	LeaderJoined()
	NoLeaders()
	State() string
}

// SessionRegistry is the live-session surface owned by the participant
// orchestrator. End tears a session down and is safe to call more than once.
type SessionRegistry interface {
	Get(channelId string) (*Session, bool)
	ForRoom(room string) []*Session
	End(session *Session)
}

// Session is one call leg for the lifetime of its participation.
type Session struct {
	Channel  *ari.ChannelHandle
	Room     string
	Settings *UserProfile
	Group    *GroupProfile
	Machine  ParticipantMachine
	Media    MediaState
	Pin      PinState
}

func NewSession(channel *ari.ChannelHandle, room string, settings *UserProfile, group *GroupProfile) *Session {
	value := Session{
		Channel:  channel,
		Room:     room,
		Settings: settings,
		Group:    group,
		Media: MediaState{
			ListenVolume: DefaultVolume,
			TalkVolume:   DefaultVolume}}
	return &value
}

func (s *Session) Id() string {
	return s.Channel.ID()
}

func (s *Session) IsFollower() bool {
	return s.Group != nil && s.Group.GroupBehavior == GroupBehaviorFollower
}

func (s *Session) IsLeader() bool {
	return s.Group != nil && s.Group.GroupBehavior == GroupBehaviorLeader
}

func (s *Session) SafeHangup() error {
	if s.Channel != nil {
		return s.Channel.Hangup()
	}
	return errors.New("No Channel is existed.")
}
