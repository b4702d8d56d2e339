package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()
	session := NewSession(newTestChannel("chan1"), "room1", &UserProfile{}, &GroupProfile{})
	require.Equal(t, "chan1", session.Id())
	require.Equal(t, DefaultVolume, session.Media.ListenVolume)
	require.Equal(t, DefaultVolume, session.Media.TalkVolume)
	require.Equal(t, 0, session.Media.PitchStage)
	require.False(t, session.Media.Muted)
	require.Equal(t, "", session.Pin.Digits)
	require.Equal(t, 0, session.Pin.Retries)
}

func TestGroupBehavior(t *testing.T) {
	t.Parallel()
	type fields struct {
		group *GroupProfile
	}
	type want struct {
		follower bool
		leader   bool
	}
	tests := []struct {
		name   string
		fields fields
		want   want
	}{
		{
			name: "Follower",
			fields: fields{
				group: &GroupProfile{GroupBehavior: GroupBehaviorFollower},
			},
			want: want{
				follower: true,
				leader:   false,
			},
		},
		{
			name: "Leader",
			fields: fields{
				group: &GroupProfile{GroupBehavior: GroupBehaviorLeader},
			},
			want: want{
				follower: false,
				leader:   true,
			},
		},
		{
			name: "Participant",
			fields: fields{
				group: &GroupProfile{GroupBehavior: GroupBehaviorParticipant},
			},
			want: want{
				follower: false,
				leader:   false,
			},
		},
		{
			name:   "NoGroup",
			fields: fields{},
			want: want{
				follower: false,
				leader:   false,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(newTestChannel("chan1"), "room1", &UserProfile{}, tt.fields.group)
			require.Equal(t, tt.want.follower, session.IsFollower())
			require.Equal(t, tt.want.leader, session.IsLeader())
		})
	}
}

func TestSafeHangupNoChannel(t *testing.T) {
	t.Parallel()
	session := Session{}
	require.Error(t, session.SafeHangup())
}
