package modules

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/types"
)

const (
	listenVolume = "VOLUME(TX)"
	talkVolume   = "VOLUME(RX)"
	pitchShift   = "PITCH_SHIFT(RX)"

	userToBridge   = "in"
	bothDirections = "both"

	volumeFloor = -10
	volumeCeil  = 10
)

// ChannelMedia issues per-channel audio commands. All counters live on the
// session's MediaState.
type ChannelMedia struct {
	bridge *types.ConfBridge
}

func NewChannelMedia(bridge *types.ConfBridge) *ChannelMedia {
	value := ChannelMedia{bridge: bridge}
	return &value
}

// ToggleMute mutes or unmutes audio from the session toward the bridge and
// announces the new state to the session.
func (m *ChannelMedia) ToggleMute(session *types.Session) {
	settings := m.bridge.Settings
	if !session.Media.Muted {
		err := session.Channel.Mute(userToBridge)
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to mute channel: "+err.Error())
			return
		}
		session.Media.Muted = true
		m.announce(session, settings.NowMutedSound)
	} else {
		err := session.Channel.Unmute(userToBridge)
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to unmute channel: "+err.Error())
			return
		}
		session.Media.Muted = false
		m.announce(session, settings.NowUnmutedSound)
	}
}

// ToggleDeafMute mutes or unmutes audio in both directions.
func (m *ChannelMedia) ToggleDeafMute(session *types.Session) {
	if !session.Media.DeafMuted {
		err := session.Channel.Mute(bothDirections)
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to deaf mute channel: "+err.Error())
			return
		}
		session.Media.DeafMuted = true
		logger.Log(logrus.DebugLevel, "channel is deaf muted")
	} else {
		err := session.Channel.Unmute(bothDirections)
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to undeaf mute channel: "+err.Error())
			return
		}
		session.Media.DeafMuted = false
		logger.Log(logrus.DebugLevel, "channel is no longer deaf muted")
	}
}

func (m *ChannelMedia) IncrementListenVolume(session *types.Session) {
	if session.Media.ListenVolume < volumeCeil {
		session.Media.ListenVolume++
		m.setVariable(session, listenVolume, strconv.Itoa(session.Media.ListenVolume))
	}
}

func (m *ChannelMedia) DecrementListenVolume(session *types.Session) {
	if session.Media.ListenVolume > volumeFloor {
		session.Media.ListenVolume--
		m.setVariable(session, listenVolume, strconv.Itoa(session.Media.ListenVolume))
	}
}

func (m *ChannelMedia) ResetListenVolume(session *types.Session) {
	session.Media.ListenVolume = types.DefaultVolume
	m.setVariable(session, listenVolume, strconv.Itoa(session.Media.ListenVolume))
}

func (m *ChannelMedia) IncrementTalkVolume(session *types.Session) {
	if session.Media.TalkVolume < volumeCeil {
		session.Media.TalkVolume++
		m.setVariable(session, talkVolume, strconv.Itoa(session.Media.TalkVolume))
	}
}

func (m *ChannelMedia) DecrementTalkVolume(session *types.Session) {
	if session.Media.TalkVolume > volumeFloor {
		session.Media.TalkVolume--
		m.setVariable(session, talkVolume, strconv.Itoa(session.Media.TalkVolume))
	}
}

func (m *ChannelMedia) ResetTalkVolume(session *types.Session) {
	session.Media.TalkVolume = types.DefaultVolume
	m.setVariable(session, talkVolume, strconv.Itoa(session.Media.TalkVolume))
}

// CyclePitch steps the outbound pitch shift through its three stages:
// lowered, raised, normal.
func (m *ChannelMedia) CyclePitch(session *types.Session) {
	switch session.Media.PitchStage {
	case 0:
		m.setVariable(session, pitchShift, "0.7")
		session.Media.PitchStage = 1
	case 1:
		m.setVariable(session, pitchShift, "higher")
		session.Media.PitchStage = 2
	default:
		m.setVariable(session, pitchShift, "1.0")
		session.Media.PitchStage = 0
	}
}

func (m *ChannelMedia) setVariable(session *types.Session, name string, value string) {
	err := session.Channel.SetVariable(name, value)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to set "+name+": "+err.Error())
	}
}

func (m *ChannelMedia) announce(session *types.Session, sound string) {
	_, err := PlayToChannel(session.Channel, sound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play announcement: "+err.Error())
	}
}
