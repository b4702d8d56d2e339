package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/store"
	"lineblocs.com/confbridge/types"
)

// Creates a named profile record. Existing records are never overwritten,
// delete the key first if a profile needs to change.
func main() {
	kind := flag.String("kind", "", "profile kind: bridge, user or group")
	name := flag.String("name", "", "profile name")

	joinSound := flag.String("join-sound", "confbridge-join", "sound played when a caller joins")
	leaveSound := flag.String("leave-sound", "confbridge-leave", "sound played when a caller leaves")
	pinNumber := flag.Int("pin", 1234, "conference PIN")
	pinRetries := flag.Int("pin-retries", 3, "failed PIN attempts allowed")
	enterPinSound := flag.String("enter-pin-sound", "confbridge-pin", "PIN prompt sound")
	badPinSound := flag.String("bad-pin-sound", "conf-invalidpin", "bad PIN sound")
	lockedSound := flag.String("locked-sound", "confbridge-lock-no-join", "sound played to callers refused by a locked room")
	nowLockedSound := flag.String("now-locked-sound", "confbridge-locked", "lock announcement")
	nowUnlockedSound := flag.String("now-unlocked-sound", "confbridge-unlocked", "unlock announcement")
	nowMutedSound := flag.String("now-muted-sound", "confbridge-muted", "mute announcement")
	nowUnmutedSound := flag.String("now-unmuted-sound", "confbridge-unmuted", "unmute announcement")
	kickedSound := flag.String("kicked-sound", "confbridge-removed", "kick announcement")
	recordConference := flag.Bool("record", false, "record the conference from the first join")
	recordingSound := flag.String("recording-sound", "conf-now-recording", "recording announcement")
	waitForLeaderSound := flag.String("wait-for-leader-sound", "conf-waitforleader", "sound played to followers waiting for a leader")
	moh := flag.Bool("moh", true, "play hold music to a lone caller")
	quiet := flag.Bool("quiet", false, "suppress join and leave announcements")
	maxMembers := flag.Int("max-members", 100, "member cap")

	admin := flag.Bool("admin", false, "caller may open the admin menu")
	pinAuth := flag.Bool("pin-auth", false, "caller must enter the PIN before joining")

	groupBehavior := flag.String("behavior", types.GroupBehaviorParticipant, "group behavior: leader, follower or participant")

	flag.Parse()

	log := logger.GetLogger()
	err := godotenv.Load()
	if err != nil {
		log.Info("Error loading .env file")
	}

	if *name == "" {
		log.Error("-name is required")
		os.Exit(1)
	}

	var record interface{}
	switch *kind {
	case "bridge":
		record = types.BridgeProfile{
			BridgeType:         *name,
			JoinSound:          *joinSound,
			LeaveSound:         *leaveSound,
			PinNumber:          *pinNumber,
			PinRetries:         *pinRetries,
			EnterPinSound:      *enterPinSound,
			BadPinSound:        *badPinSound,
			LockedSound:        *lockedSound,
			NowLockedSound:     *nowLockedSound,
			NowUnlockedSound:   *nowUnlockedSound,
			NowMutedSound:      *nowMutedSound,
			NowUnmutedSound:    *nowUnmutedSound,
			KickedSound:        *kickedSound,
			RecordConference:   *recordConference,
			RecordingSound:     *recordingSound,
			WaitForLeaderSound: *waitForLeaderSound,
			Moh:                *moh,
			Quiet:              *quiet,
			MaxMembers:         *maxMembers}
	case "user":
		record = types.UserProfile{
			UserType: *name,
			Admin:    *admin,
			Moh:      *moh,
			Quiet:    *quiet,
			PinAuth:  *pinAuth}
	case "group":
		switch *groupBehavior {
		case types.GroupBehaviorLeader, types.GroupBehaviorFollower, types.GroupBehaviorParticipant:
		default:
			log.Error("unknown group behavior: " + *groupBehavior)
			os.Exit(1)
		}
		record = types.GroupProfile{
			GroupType:     *name,
			GroupBehavior: *groupBehavior,
			MaxMembers:    *maxMembers}
	default:
		log.Error("-kind must be bridge, user or group")
		os.Exit(1)
	}

	rdb := store.CreateRDB()
	profiles := store.NewRedisStore(rdb)

	created, err := profiles.SeedProfile(context.Background(), *kind, *name, record)
	if err != nil {
		log.Error("could not write profile: " + err.Error())
		os.Exit(1)
	}
	if !created {
		log.Error(*kind + " profile " + *name + " already exists")
		os.Exit(1)
	}
	log.Info("created " + *kind + " profile " + *name)
}
