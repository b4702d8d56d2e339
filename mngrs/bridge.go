package mngrs

import (
	"context"
	"sync"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/CyCoreSystems/ari/v5/rid"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/fsms"
	"lineblocs.com/confbridge/groups"
	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/modules"
	"lineblocs.com/confbridge/store"
	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/ws"
)

// Conference bundles one room's bridge entity with its state machine and
// drivers.
type Conference struct {
	Bridge   *types.ConfBridge
	Fsm      *fsms.BridgeFSM
	Driver   *modules.BridgeDriver
	Recorder *modules.RecordingDriver
}

// BridgeManager owns the live room set. It creates the mixing bridge on the
// platform, loads the bridge profile, and runs one event loop per room.
type BridgeManager struct {
	client   ari.Client
	profiles store.ProfileStore
	cache    *store.RedisStore
	coord    *groups.Coordinator
	feed     *ws.Feed
	producer *kafka.Producer
	registry types.SessionRegistry

	mu    sync.Mutex
	rooms map[string]*Conference
}

func NewBridgeManager(client ari.Client, profiles store.ProfileStore, cache *store.RedisStore, coord *groups.Coordinator, feed *ws.Feed, producer *kafka.Producer) *BridgeManager {
	item := BridgeManager{
		client:   client,
		profiles: profiles,
		cache:    cache,
		coord:    coord,
		feed:     feed,
		producer: producer,
		rooms:    make(map[string]*Conference)}
	return &item
}

// SetRegistry wires in the participant orchestrator's session registry.
func (man *BridgeManager) SetRegistry(registry types.SessionRegistry) {
	man.registry = registry
}

// GetOrCreate returns the room's conference, creating the bridge resource
// and starting its event loop on first use.
func (man *BridgeManager) GetOrCreate(ctx context.Context, room string) (*Conference, error) {
	man.mu.Lock()
	defer man.mu.Unlock()
	if conf, ok := man.rooms[room]; ok {
		return conf, nil
	}

	settings, err := man.profiles.GetBridgeProfile(ctx, room)
	if err != nil {
		return nil, eris.Wrap(err, "failed to load bridge profile")
	}

	key := ari.NewKey(ari.BridgeKey, rid.New(rid.Bridge))
	bridge, err := man.client.Bridge().Create(key, "mixing,dtmf_events", key.ID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create bridge")
	}

	confBridge := types.NewConfBridge(room, bridge, settings)
	recorder := modules.NewRecordingDriver(confBridge, man.producer, man.feed)
	conf := &Conference{
		Bridge:   confBridge,
		Fsm:      fsms.NewBridgeFSM(confBridge, recorder, man.registry),
		Driver:   modules.NewBridgeDriver(confBridge, man.feed),
		Recorder: recorder}
	man.rooms[room] = conf

	err = man.cache.CacheConference(ctx, room, bridge.ID())
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to cache conference: "+err.Error())
	}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go man.manageBridge(conf, wg)
	wg.Wait()
	logger.Log(logrus.InfoLevel, "created conference room "+room)
	return conf, nil
}

// manageBridge is the single event loop for one room; every occupancy
// mutation for the room happens here.
func (man *BridgeManager) manageBridge(conf *Conference, wg *sync.WaitGroup) {
	h := conf.Bridge.Bridge

	destroySub := h.Subscribe(ari.Events.BridgeDestroyed)
	defer destroySub.Cancel()

	enterSub := h.Subscribe(ari.Events.ChannelEnteredBridge)
	defer enterSub.Cancel()

	leaveSub := h.Subscribe(ari.Events.ChannelLeftBridge)
	defer leaveSub.Cancel()

	wg.Done()
	logger.Log(logrus.DebugLevel, "listening for bridge events...")
	for {
		select {
		case <-destroySub.Events():
			logger.Log(logrus.DebugLevel, "bridge destroyed")
			man.dropRoom(conf)
			return
		case e, ok := <-enterSub.Events():
			if !ok {
				logger.Log(logrus.ErrorLevel, "channel entered subscription closed")
				return
			}
			v := e.(*ari.ChannelEnteredBridge)
			logger.Log(logrus.DebugLevel, "channel entered bridge: "+v.Channel.ID)
			man.handleEntered(conf, v)
		case e, ok := <-leaveSub.Events():
			if !ok {
				logger.Log(logrus.ErrorLevel, "channel left subscription closed")
				return
			}
			v := e.(*ari.ChannelLeftBridge)
			logger.Log(logrus.DebugLevel, "channel left bridge: "+v.Channel.ID)
			man.handleLeft(conf, v)
		}
	}
}

func (man *BridgeManager) handleEntered(conf *Conference, v *ari.ChannelEnteredBridge) {
	room := conf.Bridge.Id
	chanId := v.Channel.ID
	count := len(v.Bridge.ChannelIDs)

	handle := man.client.Channel().Get(ari.NewKey(ari.ChannelKey, chanId))
	conf.Bridge.AddChannel(chanId, handle)

	session, _ := man.registry.Get(chanId)
	conf.Fsm.HandleJoin(session, count)
	man.feed.Broadcast(room, "join", chanId)

	if session != nil && session.IsLeader() {
		man.coord.AddLeader(session)
		for _, follower := range man.coord.Followers() {
			follower.Machine.LeaderJoined()
		}
	}

	if conf.Bridge.Settings.Quiet {
		return
	}
	for _, member := range man.registry.ForRoom(room) {
		if member.Settings.Quiet || member.IsFollower() {
			continue
		}
		state := member.Machine.State()
		if state != fsms.StateActive && state != fsms.StateAdmin {
			// Legs still in waiting are mid-admission; do not talk over
			// their PIN prompt.
			continue
		}
		_, err := modules.PlayToChannel(member.Channel, conf.Bridge.Settings.JoinSound)
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to play join sound: "+err.Error())
		}
	}
}

func (man *BridgeManager) handleLeft(conf *Conference, v *ari.ChannelLeftBridge) {
	room := conf.Bridge.Id
	chanId := v.Channel.ID
	count := len(v.Bridge.ChannelIDs)
	ownBridge := v.Bridge.ID == conf.Bridge.Bridge.ID()

	conf.Bridge.RemoveChannel(chanId)

	session, ok := man.registry.Get(chanId)
	if ok && !session.IsFollower() {
		// A follower's lifecycle is tied to its leader; everyone else is
		// done once they leave the bridge, whether or not a StasisEnd
		// follows.
		man.registry.End(session)
	}

	conf.Fsm.HandleExit(count, ownBridge)
	man.feed.Broadcast(room, "leave", chanId)

	if session != nil && session.IsLeader() {
		man.coord.RemoveLeader(chanId)
		if !man.coord.HasLeaders() {
			for _, follower := range man.coord.Followers() {
				follower.Machine.NoLeaders()
			}
		}
	}

	if !conf.Bridge.Settings.Quiet {
		for _, member := range man.registry.ForRoom(room) {
			if member.Id() == chanId || member.Settings.Quiet || member.IsFollower() {
				continue
			}
			state := member.Machine.State()
			if state != fsms.StateActive && state != fsms.StateAdmin {
				continue
			}
			_, err := modules.PlayToChannel(member.Channel, conf.Bridge.Settings.LeaveSound)
			if err != nil {
				logger.Log(logrus.ErrorLevel, "failed to play leave sound: "+err.Error())
			}
		}
	}

	if count == 0 && ownBridge {
		man.destroyRoom(conf)
	}
}

// destroyRoom tears the empty room down; the BridgeDestroyed event ends its
// loop.
func (man *BridgeManager) destroyRoom(conf *Conference) {
	logger.Log(logrus.InfoLevel, "conference room "+conf.Bridge.Id+" is empty, destroying")
	conf.Recorder.Stop()
	err := conf.Bridge.Bridge.Delete()
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to delete bridge: "+err.Error())
	}
}

func (man *BridgeManager) dropRoom(conf *Conference) {
	room := conf.Bridge.Id
	man.mu.Lock()
	if man.rooms[room] == conf {
		delete(man.rooms, room)
	}
	man.mu.Unlock()
	err := man.cache.DropConference(context.Background(), room)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to drop cached conference: "+err.Error())
	}
}
