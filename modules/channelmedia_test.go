package modules

import (
	"strconv"
	"testing"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/stretchr/testify/require"

	"lineblocs.com/confbridge/types"
)

// stubChannel records the platform commands the modules issue. Unoverridden
// methods come from the embedded nil interface and must not be reached.
type stubChannel struct {
	ari.Channel
	vars    map[string]string
	plays   int
	playErr error
	hangups int
}

func newStubChannel() *stubChannel {
	return &stubChannel{vars: make(map[string]string)}
}

func (s *stubChannel) SetVariable(key *ari.Key, name string, value string) error {
	s.vars[name] = value
	return nil
}

func (s *stubChannel) Play(key *ari.Key, playbackID string, mediaURI string) (*ari.PlaybackHandle, error) {
	s.plays++
	if s.playErr != nil {
		return nil, s.playErr
	}
	return ari.NewPlaybackHandle(ari.NewKey(ari.PlaybackKey, playbackID), &stubPlayback{}, nil), nil
}

func (s *stubChannel) Hangup(key *ari.Key, reason string) error {
	s.hangups++
	return nil
}

type stubPlayback struct {
	ari.Playback
	sub *stubSubscription
}

func (s *stubPlayback) Subscribe(key *ari.Key, n ...string) ari.Subscription {
	if s.sub == nil {
		s.sub = newStubSubscription()
	}
	return s.sub
}

type stubSubscription struct {
	events chan ari.Event
}

func newStubSubscription() *stubSubscription {
	return &stubSubscription{events: make(chan ari.Event, 1)}
}

func (s *stubSubscription) Events() <-chan ari.Event {
	return s.events
}

func (s *stubSubscription) Cancel() {}

func newMediaSession(ch *stubChannel) *types.Session {
	handle := ari.NewChannelHandle(ari.NewKey(ari.ChannelKey, "chan1"), ch, nil)
	return types.NewSession(handle, "room1", &types.UserProfile{}, &types.GroupProfile{})
}

func TestVolumeClamp(t *testing.T) {
	t.Parallel()
	type fields struct {
		adjust  func(m *ChannelMedia, s *types.Session)
		presses int
	}
	type want struct {
		listen int
		talk   int
		name   string
		value  string
	}
	tests := []struct {
		name   string
		fields fields
		want   want
	}{
		{
			name: "ListenUpStopsAtCeiling",
			fields: fields{
				adjust:  (*ChannelMedia).IncrementListenVolume,
				presses: 15,
			},
			want: want{
				listen: 10,
				talk:   types.DefaultVolume,
				name:   "VOLUME(TX)",
				value:  "10",
			},
		},
		{
			name: "ListenDownStopsAtFloor",
			fields: fields{
				adjust:  (*ChannelMedia).DecrementListenVolume,
				presses: 25,
			},
			want: want{
				listen: -10,
				talk:   types.DefaultVolume,
				name:   "VOLUME(TX)",
				value:  "-10",
			},
		},
		{
			name: "TalkUpStopsAtCeiling",
			fields: fields{
				adjust:  (*ChannelMedia).IncrementTalkVolume,
				presses: 15,
			},
			want: want{
				listen: types.DefaultVolume,
				talk:   10,
				name:   "VOLUME(RX)",
				value:  "10",
			},
		},
		{
			name: "TalkDownStopsAtFloor",
			fields: fields{
				adjust:  (*ChannelMedia).DecrementTalkVolume,
				presses: 25,
			},
			want: want{
				listen: types.DefaultVolume,
				talk:   -10,
				name:   "VOLUME(RX)",
				value:  "-10",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ch := newStubChannel()
			session := newMediaSession(ch)
			media := NewChannelMedia(types.NewConfBridge("room1", nil, &types.BridgeProfile{}))
			for i := 0; i < tt.fields.presses; i++ {
				tt.fields.adjust(media, session)
			}
			require.Equal(t, tt.want.listen, session.Media.ListenVolume)
			require.Equal(t, tt.want.talk, session.Media.TalkVolume)
			require.Equal(t, tt.want.value, ch.vars[tt.want.name])
		})
	}
}

func TestVolumeReset(t *testing.T) {
	t.Parallel()
	ch := newStubChannel()
	session := newMediaSession(ch)
	media := NewChannelMedia(types.NewConfBridge("room1", nil, &types.BridgeProfile{}))

	for i := 0; i < 5; i++ {
		media.IncrementListenVolume(session)
		media.DecrementTalkVolume(session)
	}
	media.ResetListenVolume(session)
	media.ResetTalkVolume(session)

	require.Equal(t, types.DefaultVolume, session.Media.ListenVolume)
	require.Equal(t, types.DefaultVolume, session.Media.TalkVolume)
	require.Equal(t, strconv.Itoa(types.DefaultVolume), ch.vars["VOLUME(TX)"])
	require.Equal(t, strconv.Itoa(types.DefaultVolume), ch.vars["VOLUME(RX)"])
}

func TestCyclePitch(t *testing.T) {
	t.Parallel()
	ch := newStubChannel()
	session := newMediaSession(ch)
	media := NewChannelMedia(types.NewConfBridge("room1", nil, &types.BridgeProfile{}))

	media.CyclePitch(session)
	require.Equal(t, 1, session.Media.PitchStage)
	require.Equal(t, "0.7", ch.vars["PITCH_SHIFT(RX)"])

	media.CyclePitch(session)
	require.Equal(t, 2, session.Media.PitchStage)
	require.Equal(t, "higher", ch.vars["PITCH_SHIFT(RX)"])

	media.CyclePitch(session)
	require.Equal(t, 0, session.Media.PitchStage)
	require.Equal(t, "1.0", ch.vars["PITCH_SHIFT(RX)"])

	media.CyclePitch(session)
	require.Equal(t, 1, session.Media.PitchStage)
	require.Equal(t, "0.7", ch.vars["PITCH_SHIFT(RX)"])
}
