package domain

import "time"

// DeliveryState is the lifecycle stage of a persisted message.
//
// pending  - accepted from a live connection, not yet persisted
// sent     - persisted
// received - pushed to / acknowledged by the recipient's live connection
// seen     - recipient confirmed reading
type DeliveryState string

const (
	DeliveryPending  DeliveryState = "pending"
	DeliverySent     DeliveryState = "sent"
	DeliveryReceived DeliveryState = "received"
	DeliverySeen     DeliveryState = "seen"
)

// User represents an application user. OTP fields back the optional
// TOTP second factor.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	IsOnline       bool      `db:"is_online" json:"isOnline"`
	OTPEnabled     bool      `db:"otp_enabled" json:"otpEnabled"`
	OTPVerified    bool      `db:"otp_verified" json:"otpVerified"`
	OTPAuthURL     *string   `db:"otp_auth_url" json:"otpAuthUrl,omitempty"`
	OTPSecret      string    `db:"otp_secret" json:"-"`
	MFAEnabled     bool      `db:"mfa_enabled" json:"mfaEnabled"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	LastSeen       time.Time `db:"last_seen" json:"lastSeen"`
}

// Location is an optional geo attachment on a message.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Message represents a single chat message, direct or group-scoped.
// Exactly one of RecipientID or GroupID is set.
type Message struct {
	ID          int64         `db:"id" json:"id"`
	Text        string        `db:"text" json:"text"` // encrypted at rest
	Image       *string       `db:"image" json:"image,omitempty"`
	Video       *string       `db:"video" json:"video,omitempty"`
	Location    *Location     `db:"location" json:"location,omitempty"`
	SenderID    int64         `db:"sender_id" json:"senderId"`
	RecipientID *int64        `db:"recipient_id" json:"recipientId,omitempty"`
	GroupID     *int64        `db:"group_id" json:"groupId,omitempty"`
	ClientMsgID string        `db:"client_msg_id" json:"msgId"`
	State       DeliveryState `db:"state" json:"deliveryState"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
}

// IsDirect reports whether the message is addressed to a single user.
func (m *Message) IsDirect() bool {
	return m.RecipientID != nil
}

// Validate checks the exactly-one-of recipient/group invariant.
func (m *Message) Validate() error {
	if (m.RecipientID == nil) == (m.GroupID == nil) {
		return ErrInvalidInput
	}
	return nil
}

// Group represents a named group chat. The admin is always a member.
type Group struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AdminID   int64     `db:"admin_id" json:"adminId"`
	MemberIDs []int64   `json:"memberIds"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HasMember reports whether the given user belongs to the group.
func (g *Group) HasMember(userID int64) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
