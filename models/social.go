package models

import "time"

// EdgeKind ist die Art einer sozialen Kante.
type EdgeKind string

const (
	EdgeFollow  EdgeKind = "FOLLOW"
	EdgeLike    EdgeKind = "LIKE"
	EdgeComment EdgeKind = "COMMENT"
)

// SocialEdge ist eine gerichtete Kante Akteur -> Subjekt. Akteur und Subjekt sind nie identisch.
type SocialEdge struct {
	ActorID   string   `json:"actor_id"`
	SubjectID string   `json:"subject_id"`
	Kind      EdgeKind `json:"kind"`
	Text      string   `json:"text,omitempty"` // nur bei Kommentaren
}

// RequestStatus ist der Status einer Kollaborationsanfrage.
type RequestStatus string

const (
	RequestOpen   RequestStatus = "OPEN"
	RequestClosed RequestStatus = "CLOSED"
)

// CollabRequest ist eine Kollaborationsanfrage. Ohne ReceiverID ist sie offen ausgeschrieben.
type CollabRequest struct {
	SenderID    string        `json:"sender_id"`
	ReceiverID  string        `json:"receiver_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      RequestStatus `json:"status"`
}

// UpgradeStatus ist der Status eines Upgrade-Antrags (User -> Künstler).
type UpgradeStatus string

const (
	UpgradePending  UpgradeStatus = "PENDING"
	UpgradeRejected UpgradeStatus = "REJECTED"
)

// UpgradeRequest ist der Antrag eines normalen Users, Künstler zu werden.
type UpgradeRequest struct {
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Surname   string        `json:"surname"`
	BirthDate time.Time     `json:"birth_date"`
	Status    UpgradeStatus `json:"status"`
}
