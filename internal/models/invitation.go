package models

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// InvitationSnapshot holds the invitation fields read by the acceptance
// trigger. Absent fields decode to their zero value.
type InvitationSnapshot struct {
	Status     InvitationStatus `json:"status"`
	SenderID   string           `json:"senderId"`
	ReceiverID string           `json:"receiverId"`
}

// InvitationUpdate is one change event: the document state immediately
// before and after a single write.
type InvitationUpdate struct {
	InvitationID string             `json:"invitationId"`
	Before       InvitationSnapshot `json:"before"`
	After        InvitationSnapshot `json:"after"`
}

// BecameAccepted reports whether the update moved the invitation from any
// other status into accepted.
func (u InvitationUpdate) BecameAccepted() bool {
	return u.Before.Status != InvitationStatusAccepted && u.After.Status == InvitationStatusAccepted
}
