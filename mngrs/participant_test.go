package mngrs

import (
	"testing"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/stretchr/testify/require"

	"lineblocs.com/confbridge/fsms"
	"lineblocs.com/confbridge/groups"
	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/utils"
)

func TestParseSessionArgs(t *testing.T) {
	t.Parallel()
	type fields struct {
		args []string
	}
	type want struct {
		room      string
		userType  string
		groupType string
	}
	tests := []struct {
		name   string
		fields fields
		want   want
	}{
		{
			name: "AllArgs",
			fields: fields{
				args: []string{"room1", "speaker", "leaders"},
			},
			want: want{
				room:      "room1",
				userType:  "speaker",
				groupType: "leaders",
			},
		},
		{
			name: "RoomOnly",
			fields: fields{
				args: []string{"room1"},
			},
			want: want{
				room:      "room1",
				userType:  "default",
				groupType: "default",
			},
		},
		{
			name: "NoArgs",
			fields: fields{
				args: []string{},
			},
			want: want{
				room:      "default",
				userType:  "default",
				groupType: "default",
			},
		},
		{
			name: "EmptyStrings",
			fields: fields{
				args: []string{"", "speaker", ""},
			},
			want: want{
				room:      "default",
				userType:  "speaker",
				groupType: "default",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			room, userType, groupType := parseSessionArgs(tt.fields.args)
			require.Equal(t, tt.want.room, room)
			require.Equal(t, tt.want.userType, userType)
			require.Equal(t, tt.want.groupType, groupType)
		})
	}
}

func TestEndSessionIdempotent(t *testing.T) {
	t.Parallel()
	coord := groups.NewCoordinator()
	man := NewParticipantManager(nil, nil, nil, coord, utils.LoadMenus())

	handle := ari.NewChannelHandle(ari.NewKey(ari.ChannelKey, "chan1"), nil, nil)
	session := types.NewSession(handle, "room1", &types.UserProfile{}, &types.GroupProfile{GroupType: "default"})
	machine := &stubMachine{state: fsms.StateActive}
	session.Machine = machine
	man.sessions["chan1"] = session
	coord.Enter("default")

	man.End(session)
	require.Equal(t, 1, machine.done)
	require.Equal(t, 0, coord.Occupancy("default"))
	_, ok := man.Get("chan1")
	require.False(t, ok)

	// a second teardown must not double-count the exit
	coord.Enter("default")
	man.End(session)
	require.Equal(t, 1, machine.done)
	require.Equal(t, 1, coord.Occupancy("default"))
}
