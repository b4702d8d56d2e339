package mngrs

import (
	"context"
	"sync"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/fsms"
	"lineblocs.com/confbridge/groups"
	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/modules"
	"lineblocs.com/confbridge/store"
	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/utils"
)

// ParticipantManager owns the session registry keyed by channel ID. It sets
// sessions up when their leg enters the application and tears them down on
// the leg's end event.
type ParticipantManager struct {
	client   ari.Client
	profiles store.ProfileStore
	bridges  *BridgeManager
	coord    *groups.Coordinator
	menus    *utils.Menus

	mu       sync.RWMutex
	sessions map[string]*types.Session
}

func NewParticipantManager(client ari.Client, profiles store.ProfileStore, bridges *BridgeManager, coord *groups.Coordinator, menus *utils.Menus) *ParticipantManager {
	item := ParticipantManager{
		client:   client,
		profiles: profiles,
		bridges:  bridges,
		coord:    coord,
		menus:    menus,
		sessions: make(map[string]*types.Session)}
	return &item
}

// Get implements types.SessionRegistry.
func (man *ParticipantManager) Get(channelId string) (*types.Session, bool) {
	man.mu.RLock()
	defer man.mu.RUnlock()
	session, ok := man.sessions[channelId]
	return session, ok
}

// End implements types.SessionRegistry.
func (man *ParticipantManager) End(session *types.Session) {
	man.endSession(session)
}

// ForRoom implements types.SessionRegistry.
func (man *ParticipantManager) ForRoom(room string) []*types.Session {
	man.mu.RLock()
	defer man.mu.RUnlock()
	list := make([]*types.Session, 0)
	for _, session := range man.sessions {
		if session.Room == room {
			list = append(list, session)
		}
	}
	return list
}

// parseSessionArgs maps the leg's application arguments to room, user type
// and group type, defaulting each to "default".
func parseSessionArgs(args []string) (string, string, string) {
	room := store.DefaultProfile
	userType := store.DefaultProfile
	groupType := store.DefaultProfile
	if len(args) > 0 && args[0] != "" {
		room = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		userType = args[1]
	}
	if len(args) > 2 && args[2] != "" {
		groupType = args[2]
	}
	return room, userType, groupType
}

// StartSession runs the full session setup for one incoming leg.
func (man *ParticipantManager) StartSession(event *ari.StasisStart, h *ari.ChannelHandle) {
	ctx := context.Background()
	room, userType, groupType := parseSessionArgs(event.Args)
	logger.Log(logrus.InfoLevel, "starting session for "+h.ID()+" room="+room+" user="+userType+" group="+groupType)

	err := h.Answer()
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to answer channel: "+err.Error())
	}

	settings, err := man.profiles.GetUserProfile(ctx, userType)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to load user profile: "+err.Error())
		h.Hangup()
		return
	}
	group, err := man.profiles.GetGroupProfile(ctx, groupType)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to load group profile: "+err.Error())
		h.Hangup()
		return
	}

	conf, err := man.bridges.GetOrCreate(ctx, room)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to set up conference: "+err.Error())
		h.Hangup()
		return
	}

	session := types.NewSession(h, room, settings, group)
	session.Machine = fsms.NewParticipantFSM(
		session,
		conf.Bridge,
		conf.Driver,
		modules.NewChannelMedia(conf.Bridge),
		conf.Recorder,
		man.menus,
		man.coord,
		man)

	man.mu.Lock()
	man.sessions[h.ID()] = session
	man.mu.Unlock()

	if session.IsFollower() {
		man.coord.AddFollower(session)
	}
	man.coord.Enter(group.GroupType)
	if man.coord.OverCapacity(group) {
		logger.Log(logrus.InfoLevel, "group "+group.GroupType+" at capacity, rejecting "+h.ID())
		man.endSession(session)
		h.Hangup()
		return
	}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go man.attachListeners(session, wg)
	wg.Wait()

	session.Machine.Ready()
}

// attachListeners is the per-session event loop for DTMF and teardown.
func (man *ParticipantManager) attachListeners(session *types.Session, wg *sync.WaitGroup) {
	h := session.Channel

	dtmfSub := h.Subscribe(ari.Events.ChannelDtmfReceived)
	defer dtmfSub.Cancel()

	endSub := h.Subscribe(ari.Events.StasisEnd)
	defer endSub.Cancel()

	wg.Done()
	for {
		select {
		case e, ok := <-dtmfSub.Events():
			if !ok {
				logger.Log(logrus.ErrorLevel, "DTMF subscription closed")
				return
			}
			v := e.(*ari.ChannelDtmfReceived)
			// The session may have been torn down while this event was in
			// flight.
			current, ok := man.Get(session.Id())
			if !ok || current != session {
				logger.Log(logrus.DebugLevel, "DTMF for unknown session "+session.Id()+", ignoring")
				continue
			}
			logger.Log(logrus.DebugLevel, "received DTMF: "+v.Digit)
			session.Machine.Dtmf(v.Digit)
		case <-endSub.Events():
			logger.Log(logrus.DebugLevel, "stasis end for "+session.Id())
			man.endSession(session)
			return
		}
	}
}

// endSession tears one session down. It is safe to call more than once.
func (man *ParticipantManager) endSession(session *types.Session) {
	chanId := session.Id()
	man.mu.Lock()
	current, ok := man.sessions[chanId]
	if !ok || current != session {
		man.mu.Unlock()
		return
	}
	delete(man.sessions, chanId)
	man.mu.Unlock()

	session.Machine.Done()
	man.coord.Exit(session.Group.GroupType)
	if session.IsFollower() {
		man.coord.RemoveFollower(chanId)
	}
	if man.coord.IsLeader(chanId) {
		man.coord.RemoveLeader(chanId)
		if !man.coord.HasLeaders() {
			for _, follower := range man.coord.Followers() {
				follower.Machine.NoLeaders()
			}
		}
	}
	logger.Log(logrus.InfoLevel, "session ended: "+chanId)
}
