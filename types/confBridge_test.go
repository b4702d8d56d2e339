package types

import (
	"testing"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/stretchr/testify/require"
)

func newTestChannel(id string) *ari.ChannelHandle {
	return ari.NewChannelHandle(ari.NewKey(ari.ChannelKey, id), nil, nil)
}

func newTestConfBridge() *ConfBridge {
	return NewConfBridge("room1", nil, &BridgeProfile{BridgeType: "default"})
}

func TestConfBridgeAddChannel(t *testing.T) {
	t.Parallel()
	type fields struct {
		ids []string
	}
	type want struct {
		count int
	}
	tests := []struct {
		name   string
		fields fields
		want   want
	}{
		{
			name: "OK",
			fields: fields{
				ids: []string{"chan1", "chan2"},
			},
			want: want{
				2,
			},
		},
		{
			name: "DuplicateIgnored",
			fields: fields{
				ids: []string{"chan1", "chan1"},
			},
			want: want{
				1,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			bridge := newTestConfBridge()
			for _, id := range tt.fields.ids {
				bridge.AddChannel(id, newTestChannel(id))
			}
			require.Equal(t, tt.want.count, bridge.ChannelCount())
		})
	}
}

func TestConfBridgeRemoveChannel(t *testing.T) {
	t.Parallel()
	bridge := newTestConfBridge()
	bridge.AddChannel("chan1", newTestChannel("chan1"))
	bridge.AddChannel("chan2", newTestChannel("chan2"))

	bridge.RemoveChannel("chan1")
	require.Equal(t, 1, bridge.ChannelCount())
	require.False(t, bridge.HasChannel("chan1"))
	require.True(t, bridge.HasChannel("chan2"))

	bridge.RemoveChannel("chan1")
	require.Equal(t, 1, bridge.ChannelCount())
}

func TestPopLastJoined(t *testing.T) {
	t.Parallel()
	type fields struct {
		joined  []string
		removed []string
	}
	type want struct {
		id string
		ok bool
	}
	tests := []struct {
		name   string
		fields fields
		want   want
	}{
		{
			name: "MostRecent",
			fields: fields{
				joined: []string{"chan1", "chan2", "chan3"},
			},
			want: want{
				id: "chan3",
				ok: true,
			},
		},
		{
			name: "SkipsUnseated",
			fields: fields{
				joined:  []string{"chan1", "chan2", "chan3"},
				removed: []string{"chan3", "chan2"},
			},
			want: want{
				id: "chan1",
				ok: true,
			},
		},
		{
			name:   "Empty",
			fields: fields{},
			want: want{
				id: "",
				ok: false,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			bridge := newTestConfBridge()
			for _, id := range tt.fields.joined {
				bridge.AddChannel(id, newTestChannel(id))
			}
			for _, id := range tt.fields.removed {
				bridge.RemoveChannel(id)
			}
			id, handle, ok := bridge.PopLastJoined()
			require.Equal(t, tt.want.ok, ok)
			require.Equal(t, tt.want.id, id)
			if tt.want.ok {
				require.NotNil(t, handle)
				require.False(t, bridge.HasChannel(id))
			}
		})
	}
}

func TestToggleLocked(t *testing.T) {
	t.Parallel()
	bridge := newTestConfBridge()
	require.False(t, bridge.IsLocked())
	require.True(t, bridge.ToggleLocked())
	require.True(t, bridge.IsLocked())
	require.False(t, bridge.ToggleLocked())
	require.False(t, bridge.IsLocked())
}

func TestRecordingState(t *testing.T) {
	t.Parallel()
	bridge := newTestConfBridge()
	enabled, paused := bridge.RecordingState()
	require.False(t, enabled)
	require.False(t, paused)

	bridge.SetRecordingState(true, false)
	bridge.SetCurrentRecording("confbridge-abc")
	enabled, paused = bridge.RecordingState()
	require.True(t, enabled)
	require.False(t, paused)
	require.Equal(t, "confbridge-abc", bridge.CurrentRecording())

	bridge.SetRecordingState(true, true)
	enabled, paused = bridge.RecordingState()
	require.True(t, enabled)
	require.True(t, paused)
}
