package models

import "strings"

// ConnectionStatus is the viewer's relationship to another user as reported
// by the backend.
type ConnectionStatus string

const (
	ConnectionStatusNone    ConnectionStatus = "CONNECT"
	ConnectionStatusPending ConnectionStatus = "PENDING"
	ConnectionStatusFriends ConnectionStatus = "FRIENDS"
)

// ParseConnectionStatus maps a wire value to a status. Anything unrecognised
// is treated as no relationship.
func ParseConnectionStatus(raw string) ConnectionStatus {
	switch strings.ToUpper(strings.Trim(strings.TrimSpace(raw), `"`)) {
	case string(ConnectionStatusPending):
		return ConnectionStatusPending
	case string(ConnectionStatusFriends):
		return ConnectionStatusFriends
	default:
		return ConnectionStatusNone
	}
}

func (s ConnectionStatus) Label() string {
	switch s {
	case ConnectionStatusFriends:
		return "Friends"
	case ConnectionStatusPending:
		return "Pending"
	default:
		return "Connect"
	}
}

// CanRequest reports whether a new request may be sent from this state.
func (s ConnectionStatus) CanRequest() bool {
	return s == ConnectionStatusNone || s == ""
}

type ConnectionRequestStatus string

const (
	RequestStatusPending  ConnectionRequestStatus = "PENDING"
	RequestStatusAccepted ConnectionRequestStatus = "ACCEPTED"
	RequestStatusRejected ConnectionRequestStatus = "REJECTED"
)

type ConnectionRequest struct {
	ID         string                  `json:"id"`
	FromUserID string                  `json:"fromUserId"`
	ToUserID   string                  `json:"toUserId"`
	Message    string                  `json:"message"`
	Status     ConnectionRequestStatus `json:"status"`
	CreatedAt  string                  `json:"createdAt"`
	UpdatedAt  string                  `json:"updatedAt"`
}

type CreateConnectionRequest struct {
	ToUserID string `json:"toUserId"`
	Message  string `json:"message"`
}

// UserCard is one entry of the home feed.
type UserCard struct {
	UserID    string  `json:"userId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Profile   Profile `json:"profile"`
	CreatedAt string  `json:"createdAt"`
}

// Initials is used when the card has no photo.
func (c UserCard) Initials() string {
	var b strings.Builder
	for _, name := range []string{c.FirstName, c.LastName} {
		for _, r := range name {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

// FeedEntry pairs a card with the viewer's status toward it.
type FeedEntry struct {
	User   UserCard         `json:"user"`
	Status ConnectionStatus `json:"status"`
}
