package store

import (
	"context"

	"lineblocs.com/confbridge/types"
)

// ProfileStore returns immutable configuration records by type name. Every
// lookup falls back to the "default" record when the requested type does not
// exist.
type ProfileStore interface {
	GetBridgeProfile(ctx context.Context, bridgeType string) (*types.BridgeProfile, error)
	GetUserProfile(ctx context.Context, userType string) (*types.UserProfile, error)
	GetGroupProfile(ctx context.Context, groupType string) (*types.GroupProfile, error)
}

const DefaultProfile = "default"
