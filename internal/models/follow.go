package models

import "time"

// FollowKind names which side of a follow edge an index entry belongs to.
type FollowKind string

const (
	// FollowKindFollowers entries are owned by the followee and list followers.
	FollowKindFollowers FollowKind = "followers"
	// FollowKindFollowing entries are owned by the follower and list followees.
	FollowKindFollowing FollowKind = "following"
)

// FollowEntry is one half of a follow edge. An edge follower -> followee is
// stored as (followee, followers, follower) and (follower, following, followee);
// both entries carry the same FollowingFrom. UserID is the handle of the
// other party.
type FollowEntry struct {
	OwnerID       string     `gorm:"primaryKey;size:128" json:"owner_id" bson:"owner_id"`
	Kind          FollowKind `gorm:"primaryKey;size:16" json:"kind" bson:"kind"`
	OtherID       string     `gorm:"primaryKey;size:128" json:"other_id" bson:"other_id"`
	UserID        string     `gorm:"size:64" json:"user_id" bson:"user_id"`
	FollowingFrom time.Time  `json:"following_from" bson:"following_from"`
}

// FollowEdge describes a follow relation before it is split into entries.
type FollowEdge struct {
	FollowerID     string
	FolloweeID     string
	FollowerUserID string
	FolloweeUserID string
	FollowingFrom  time.Time
}

// Entries returns the two index entries that make up the edge.
func (e FollowEdge) Entries() (followers, following FollowEntry) {
	followers = FollowEntry{
		OwnerID:       e.FolloweeID,
		Kind:          FollowKindFollowers,
		OtherID:       e.FollowerID,
		UserID:        e.FollowerUserID,
		FollowingFrom: e.FollowingFrom,
	}
	following = FollowEntry{
		OwnerID:       e.FollowerID,
		Kind:          FollowKindFollowing,
		OtherID:       e.FolloweeID,
		UserID:        e.FolloweeUserID,
		FollowingFrom: e.FollowingFrom,
	}
	return followers, following
}
