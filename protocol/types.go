package protocol

// Message type constants.
const (
	// Floor -> Core (published on the events topic)
	TypeCaseScanned   = "case.scanned"
	TypeKartLocation  = "kart.location"
	TypeKartReceived  = "kart.received"
	TypeKartCompleted = "kart.completed"
	TypeOrderScanned  = "order.scanned"

	// Core -> Floor
	TypeKartAssignment   = "kart.assignment"
	TypePushNotification = "push.notification"
)

// Roles for Address.Role.
const (
	RoleCore    = "core"
	RoleKart    = "kart"
	RoleScanner = "scanner"
	RoleUser    = "user"
	RolePush    = "push"
)

// Protocol version.
const Version = 1
