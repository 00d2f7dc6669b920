package queue

import (
	"fmt"
	"time"
)

type Granularity string

// MaxExpiryMinutes caps how long a signup may wait in a pool.
const MaxExpiryMinutes = 60

const (
	GranularityCommunity Granularity = "community"
	GranularityChannel   Granularity = "channel"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case GranularityCommunity, GranularityChannel:
		return g, nil
	default:
		return "", fmt.Errorf("invalid scope granularity - '%s'", s)
	}
}

// ScopeKey identifies one pending pool. ChannelID is empty for community-wide scopes.
type ScopeKey struct {
	CommunityID string `json:"community_id"`
	ChannelID   string `json:"channel_id,omitempty"`
}

func (k ScopeKey) String() string {
	if k.ChannelID == "" {
		return k.CommunityID
	}
	return k.CommunityID + "/" + k.ChannelID
}

// ScopeSettings are the per-community knobs supplied by the configuration collaborator.
type ScopeSettings struct {
	ExpiryMinutes        int         `json:"expiry_minutes" db:"expiry_minutes"`
	Granularity          Granularity `json:"granularity" db:"granularity"`
	PowerTolerance       float64     `json:"power_tolerance" db:"power_tolerance"`
	FriendlyQueueEnabled bool        `json:"friendly_queue_enabled" db:"friendly_queue_enabled"`
}

func DefaultScopeSettings() ScopeSettings {
	return ScopeSettings{
		ExpiryMinutes:        30,
		Granularity:          GranularityCommunity,
		PowerTolerance:       1.5,
		FriendlyQueueEnabled: true,
	}
}

func (s ScopeSettings) Validate() error {
	if s.ExpiryMinutes < 1 || s.ExpiryMinutes > MaxExpiryMinutes {
		return fmt.Errorf("invalid ExpiryMinutes - '%d'", s.ExpiryMinutes)
	}

	if s.PowerTolerance < 0 {
		return fmt.Errorf("invalid PowerTolerance - '%v'", s.PowerTolerance)
	}

	if _, err := ParseGranularity(string(s.Granularity)); err != nil {
		return err
	}

	return nil
}

func (s ScopeSettings) Expiry() time.Duration {
	return time.Duration(s.ExpiryMinutes) * time.Minute
}

// ScopeFor builds the pool key for a raw community/channel pair. Channel scoped
// communities need a channel; an empty one would land in the community-wide pool.
func (s ScopeSettings) ScopeFor(communityID, channelID string) (ScopeKey, error) {
	if s.Granularity != GranularityChannel {
		return ScopeKey{CommunityID: communityID}, nil
	}

	if channelID == "" {
		return ScopeKey{}, fmt.Errorf("community %s queues per channel: %w", communityID, ErrChannelRequired)
	}

	return ScopeKey{CommunityID: communityID, ChannelID: channelID}, nil
}
