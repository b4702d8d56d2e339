package groups

import (
	"sync"

	"lineblocs.com/confbridge/types"
)

// Coordinator tracks per-group-type occupancy and the live leader and
// follower sets. It is mutated only by the participant orchestrator's
// entry and exit callbacks.
type Coordinator struct {
	mu        sync.Mutex
	counts    map[string]int
	leaders   map[string]*types.Session
	followers map[string]*types.Session
}

func NewCoordinator() *Coordinator {
	value := Coordinator{
		counts:    make(map[string]int),
		leaders:   make(map[string]*types.Session),
		followers: make(map[string]*types.Session)}
	return &value
}

// Enter counts a session into its group type and reports the new occupancy.
func (c *Coordinator) Enter(groupType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[groupType]++
	return c.counts[groupType]
}

func (c *Coordinator) Exit(groupType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[groupType] > 0 {
		c.counts[groupType]--
	}
}

func (c *Coordinator) Occupancy(groupType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[groupType]
}

// OverCapacity reports whether the group's occupancy exceeds its configured
// maximum.
func (c *Coordinator) OverCapacity(group *types.GroupProfile) bool {
	if group == nil || group.MaxMembers <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[group.GroupType] > group.MaxMembers
}

func (c *Coordinator) AddLeader(session *types.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaders[session.Id()] = session
}

func (c *Coordinator) RemoveLeader(channelId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.leaders, channelId)
}

func (c *Coordinator) AddFollower(session *types.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followers[session.Id()] = session
}

func (c *Coordinator) RemoveFollower(channelId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.followers, channelId)
}

func (c *Coordinator) IsLeader(channelId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.leaders[channelId]
	return ok
}

func (c *Coordinator) IsFollower(channelId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.followers[channelId]
	return ok
}

func (c *Coordinator) HasLeaders() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.leaders) > 0
}

func (c *Coordinator) LeaderCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.leaders)
}

func (c *Coordinator) FollowerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.followers)
}

// Followers snapshots the live follower sessions.
func (c *Coordinator) Followers() []*types.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := make([]*types.Session, 0, len(c.followers))
	for _, session := range c.followers {
		list = append(list, session)
	}
	return list
}
