package protocol

import "time"

// Default TTLs by message category.
var defaultTTLs = map[string]time.Duration{
	TypeKartLocation: 30 * time.Second,

	TypeCaseScanned:   10 * time.Minute,
	TypeKartReceived:  30 * time.Minute,
	TypeKartCompleted: 30 * time.Minute,
	TypeOrderScanned:  30 * time.Minute,

	TypeKartAssignment:   60 * time.Minute,
	TypePushNotification: 5 * time.Minute,
}

// FallbackTTL is used when no specific TTL is configured.
const FallbackTTL = 10 * time.Minute

// DefaultTTLFor returns the default TTL for a message type.
func DefaultTTLFor(msgType string) time.Duration {
	if ttl, ok := defaultTTLs[msgType]; ok {
		return ttl
	}
	return FallbackTTL
}

// IsExpired returns true if the envelope has passed its expiry time.
func IsExpired(env *Envelope) bool {
	if env.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().UTC().After(env.ExpiresAt)
}

// IsExpiredHeader checks expiry using only the raw header.
func IsExpiredHeader(hdr *RawHeader) bool {
	if hdr.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().UTC().After(hdr.ExpiresAt)
}
