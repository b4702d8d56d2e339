package types

// BridgeProfile holds the configuration record for one conference room type.
// Records are immutable after load.
type BridgeProfile struct {
	BridgeType         string `json:"bridge_type"`
	JoinSound          string `json:"join_sound"`
	LeaveSound         string `json:"leave_sound"`
	PinNumber          int    `json:"pin_number"`
	PinRetries         int    `json:"pin_retries"`
	EnterPinSound      string `json:"enter_pin_sound"`
	BadPinSound        string `json:"bad_pin_sound"`
	LockedSound        string `json:"locked_sound"`
	NowLockedSound     string `json:"now_locked_sound"`
	NowUnlockedSound   string `json:"now_unlocked_sound"`
	NowMutedSound      string `json:"now_muted_sound"`
	NowUnmutedSound    string `json:"now_unmuted_sound"`
	KickedSound        string `json:"kicked_sound"`
	RecordConference   bool   `json:"record_conference"`
	RecordingSound     string `json:"recording_sound"`
	WaitForLeaderSound string `json:"wait_for_leader_sound"`
	Moh                bool   `json:"moh"`
	Quiet              bool   `json:"quiet"`
	MaxMembers         int    `json:"max_members"`
}

// UserProfile holds the per-caller configuration record.
type UserProfile struct {
	UserType string `json:"user_type"`
	Admin    bool   `json:"admin"`
	Moh      bool   `json:"moh"`
	Quiet    bool   `json:"quiet"`
	PinAuth  bool   `json:"pin_auth"`
}

// GroupProfile holds the configuration record for one group type.
type GroupProfile struct {
	GroupType     string `json:"group_type"`
	GroupBehavior string `json:"group_behavior"`
	MaxMembers    int    `json:"max_members"`
}

const (
	GroupBehaviorLeader      = "leader"
	GroupBehaviorFollower    = "follower"
	GroupBehaviorParticipant = "participant"
)
