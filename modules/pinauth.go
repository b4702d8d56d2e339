package modules

import (
	"strconv"
	"sync"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/types"
)

// PinAuth collects PIN digits for one waiting session. The digit buffer and
// retry count live on the session; the module keeps only the in-flight
// prompt so a verify press can cut it short.
type PinAuth struct {
	mu      sync.Mutex
	current *ari.PlaybackHandle
}

func NewPinAuth() *PinAuth {
	return &PinAuth{}
}

// Prompt asks the session to enter the conference PIN.
func (p *PinAuth) Prompt(session *types.Session, settings *types.BridgeProfile) {
	playback, err := PlayToChannel(session.Channel, settings.EnterPinSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play PIN prompt: "+err.Error())
		return
	}
	p.mu.Lock()
	p.current = playback
	p.mu.Unlock()
}

// AddDigit appends one digit to the session's entry buffer.
func (p *PinAuth) AddDigit(session *types.Session, digit string) {
	session.Pin.Digits += digit
}

// Check stops any in-flight prompt and compares the buffered digits with the
// bridge PIN. The buffer is cleared either way.
func (p *PinAuth) Check(session *types.Session, settings *types.BridgeProfile) bool {
	p.stopCurrent()
	entered, err := strconv.Atoi(session.Pin.Digits)
	session.Pin.Digits = ""
	if err != nil {
		return false
	}
	return entered == settings.PinNumber
}

// Invalid announces a bad PIN and counts the retry. It reports whether the
// retry limit is now exhausted; when it is, the channel is hung up once the
// announcement finishes.
func (p *PinAuth) Invalid(session *types.Session, settings *types.BridgeProfile) bool {
	session.Pin.Retries++
	exhausted := session.Pin.Retries > settings.PinRetries

	playback, err := PlayToChannel(session.Channel, settings.BadPinSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play bad PIN sound: "+err.Error())
		if exhausted {
			session.SafeHangup()
		}
		return exhausted
	}
	p.mu.Lock()
	p.current = playback
	p.mu.Unlock()

	if exhausted {
		logger.Log(logrus.DebugLevel, "max PIN retries reached")
		OnPlaybackFinished(playback, func() {
			err := session.SafeHangup()
			if err != nil {
				logger.Log(logrus.ErrorLevel, "failed to hang up channel: "+err.Error())
			}
		})
	}
	return exhausted
}

func (p *PinAuth) stopCurrent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		err := p.current.Stop()
		if err != nil {
			logger.Log(logrus.DebugLevel, "could not stop PIN prompt: "+err.Error())
		}
		p.current = nil
	}
}
