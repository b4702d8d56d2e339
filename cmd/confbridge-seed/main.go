package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/store"
	"lineblocs.com/confbridge/types"
)

// Seeds the default profile records so a fresh deployment can take calls
// without any provisioning step.
func main() {
	log := logger.GetLogger()
	err := godotenv.Load()
	if err != nil {
		log.Info("Error loading .env file")
	}

	rdb := store.CreateRDB()
	profiles := store.NewRedisStore(rdb)
	ctx := context.Background()

	bridge := types.BridgeProfile{
		BridgeType:         store.DefaultProfile,
		JoinSound:          "confbridge-join",
		LeaveSound:         "confbridge-leave",
		PinNumber:          1234,
		PinRetries:         3,
		EnterPinSound:      "confbridge-pin",
		BadPinSound:        "conf-invalidpin",
		LockedSound:        "confbridge-lock-no-join",
		NowLockedSound:     "confbridge-locked",
		NowUnlockedSound:   "confbridge-unlocked",
		NowMutedSound:      "confbridge-muted",
		NowUnmutedSound:    "confbridge-unmuted",
		KickedSound:        "confbridge-removed",
		RecordConference:   false,
		RecordingSound:     "conf-now-recording",
		WaitForLeaderSound: "conf-waitforleader",
		Moh:                true,
		Quiet:              false,
		MaxMembers:         100}

	user := types.UserProfile{
		UserType: store.DefaultProfile,
		Admin:    false,
		Moh:      true,
		Quiet:    false,
		PinAuth:  false}

	group := types.GroupProfile{
		GroupType:     store.DefaultProfile,
		GroupBehavior: types.GroupBehaviorParticipant,
		MaxMembers:    100}

	seeds := []struct {
		kind   string
		record interface{}
	}{
		{"bridge", bridge},
		{"user", user},
		{"group", group}}

	failed := false
	for _, seed := range seeds {
		created, err := profiles.SeedProfile(ctx, seed.kind, store.DefaultProfile, seed.record)
		if err != nil {
			log.Error("could not seed " + seed.kind + " profile: " + err.Error())
			failed = true
			continue
		}
		if !created {
			log.Info(seed.kind + " profile already exists, skipping")
			continue
		}
		log.Info("seeded default " + seed.kind + " profile")
	}
	if failed {
		os.Exit(1)
	}
}
