package mngrs

import (
	"testing"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/stretchr/testify/require"

	"lineblocs.com/confbridge/fsms"
	"lineblocs.com/confbridge/groups"
	"lineblocs.com/confbridge/modules"
	"lineblocs.com/confbridge/types"
)

type stubMachine struct {
	state string
	done  int
}

func (m *stubMachine) Ready()            {}
func (m *stubMachine) Dtmf(digit string) {}
func (m *stubMachine) Done()             { m.done++ }
func (m *stubMachine) LeaderJoined()     {}
func (m *stubMachine) NoLeaders()        {}
func (m *stubMachine) State() string     { return m.state }

type playCountChannel struct {
	ari.Channel
	plays int
}

func (s *playCountChannel) Play(key *ari.Key, playbackID string, mediaURI string) (*ari.PlaybackHandle, error) {
	s.plays++
	return nil, nil
}

func (s *playCountChannel) Get(key *ari.Key) *ari.ChannelHandle {
	return ari.NewChannelHandle(key, s, nil)
}

type stubClient struct {
	ari.Client
	channel ari.Channel
}

func (s *stubClient) Channel() ari.Channel { return s.channel }

type stubRegistry struct {
	sessions map[string]*types.Session
}

func (r *stubRegistry) Get(channelId string) (*types.Session, bool) {
	session, ok := r.sessions[channelId]
	return session, ok
}

func (r *stubRegistry) ForRoom(room string) []*types.Session {
	list := make([]*types.Session, 0)
	for _, session := range r.sessions {
		if session.Room == room {
			list = append(list, session)
		}
	}
	return list
}

func (r *stubRegistry) End(session *types.Session) {}

func newMemberSession(id string, state string) (*types.Session, *playCountChannel) {
	ch := &playCountChannel{}
	handle := ari.NewChannelHandle(ari.NewKey(ari.ChannelKey, id), ch, nil)
	session := types.NewSession(handle, "room1", &types.UserProfile{}, &types.GroupProfile{GroupType: "default"})
	session.Machine = &stubMachine{state: state}
	return session, ch
}

func TestJoinSoundSkipsWaitingMembers(t *testing.T) {
	t.Parallel()
	settings := &types.BridgeProfile{BridgeType: "default"}
	confBridge := types.NewConfBridge("room1", nil, settings)
	recorder := modules.NewRecordingDriver(confBridge, nil, nil)

	joiner, joinerChan := newMemberSession("chan1", fsms.StateActive)
	seated, seatedChan := newMemberSession("chan2", fsms.StateActive)
	waiting, waitingChan := newMemberSession("chan3", fsms.StateWaiting)
	registry := &stubRegistry{sessions: map[string]*types.Session{
		"chan1": joiner,
		"chan2": seated,
		"chan3": waiting}}

	man := NewBridgeManager(&stubClient{channel: &playCountChannel{}}, nil, nil, groups.NewCoordinator(), nil, nil)
	man.SetRegistry(registry)
	conf := &Conference{
		Bridge:   confBridge,
		Fsm:      fsms.NewBridgeFSM(confBridge, recorder, registry),
		Driver:   modules.NewBridgeDriver(confBridge, nil),
		Recorder: recorder}

	man.handleEntered(conf, &ari.ChannelEnteredBridge{
		Bridge:  ari.BridgeData{ID: "b1", ChannelIDs: []string{"chan2", "chan1"}},
		Channel: ari.ChannelData{ID: "chan1"}})

	require.Equal(t, 1, joinerChan.plays)
	require.Equal(t, 1, seatedChan.plays)
	require.Equal(t, 0, waitingChan.plays)
	require.True(t, confBridge.HasChannel("chan1"))
}
