package modules

import (
	"errors"
	"testing"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/stretchr/testify/require"

	"lineblocs.com/confbridge/types"
)

func newPinSession(ch *stubChannel) *types.Session {
	handle := ari.NewChannelHandle(ari.NewKey(ari.ChannelKey, "chan1"), ch, nil)
	return types.NewSession(handle, "room1", &types.UserProfile{PinAuth: true}, &types.GroupProfile{})
}

func TestPinCheck(t *testing.T) {
	t.Parallel()
	type fields struct {
		digits string
		pin    int
	}
	type want struct {
		ok bool
	}
	tests := []struct {
		name   string
		fields fields
		want   want
	}{
		{
			name: "Correct",
			fields: fields{
				digits: "1234",
				pin:    1234,
			},
			want: want{
				true,
			},
		},
		{
			name: "Wrong",
			fields: fields{
				digits: "9999",
				pin:    1234,
			},
			want: want{
				false,
			},
		},
		{
			name: "Empty",
			fields: fields{
				digits: "",
				pin:    1234,
			},
			want: want{
				false,
			},
		},
		{
			name: "NonNumeric",
			fields: fields{
				digits: "12*4",
				pin:    1234,
			},
			want: want{
				false,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			pin := NewPinAuth()
			session := newPinSession(newStubChannel())
			settings := &types.BridgeProfile{PinNumber: tt.fields.pin}
			for _, digit := range tt.fields.digits {
				pin.AddDigit(session, string(digit))
			}
			require.Equal(t, tt.want.ok, pin.Check(session, settings))
			// the entry buffer is cleared whether or not the PIN matched
			require.Equal(t, "", session.Pin.Digits)
		})
	}
}

func TestPinRetryExhaustion(t *testing.T) {
	t.Parallel()
	pin := NewPinAuth()
	ch := newStubChannel()
	// a failed announcement falls back to an immediate hangup, which keeps
	// this test synchronous
	ch.playErr = errors.New("playback failed")
	session := newPinSession(ch)
	settings := &types.BridgeProfile{PinNumber: 1234, PinRetries: 3}

	for attempt := 1; attempt <= 3; attempt++ {
		pin.AddDigit(session, "0")
		require.False(t, pin.Check(session, settings))
		require.False(t, pin.Invalid(session, settings))
		require.Equal(t, attempt, session.Pin.Retries)
	}
	require.Equal(t, 0, ch.hangups)

	pin.AddDigit(session, "0")
	require.False(t, pin.Check(session, settings))
	require.True(t, pin.Invalid(session, settings))
	require.Equal(t, 4, session.Pin.Retries)
	require.Equal(t, 1, ch.hangups)
}
