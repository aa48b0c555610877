package models

import "time"

// UserRole ist die Rolle eines Accounts auf der Zielplattform.
type UserRole string

const (
	RoleArtist UserRole = "ARTIST"
	RoleUser   UserRole = "USER"
)

// CreatorProfile enthält die Künstlerangaben eines Accounts.
type CreatorProfile struct {
	Name           string    `json:"name"`
	Surname        string    `json:"surname"`
	BirthDate      time.Time `json:"birth_date"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	PaymentContact string    `json:"payment_contact,omitempty"`
}

// TargetUser ist ein Account auf der Zielplattform.
type TargetUser struct {
	ID       string          `json:"id,omitempty"`
	Username string          `json:"username"`
	Nickname string          `json:"nickname"`
	Email    string          `json:"email"`
	Role     UserRole        `json:"role"`
	Creator  *CreatorProfile `json:"creator,omitempty"`
}

// PublicationKind unterscheidet Werke, Events und Posts.
type PublicationKind string

const (
	KindArtworkPublication PublicationKind = "ARTWORK"
	KindEventPublication   PublicationKind = "EVENT"
	KindPostPublication    PublicationKind = "POST"
)

// ArtworkAttributes sind die werkspezifischen Felder einer Publikation.
type ArtworkAttributes struct {
	Category        string    `json:"category,omitempty"`
	CreationDate    time.Time `json:"creation_date"`
	Copies          int       `json:"copies"`
	AvailableCopies int       `json:"available_copies"`
	OnSale          bool      `json:"on_sale"`
	PriceMinor      int64     `json:"price_minor,omitempty"` // kleinste Währungseinheit
	Currency        string    `json:"currency,omitempty"`
	PaymentContact  string    `json:"payment_contact,omitempty"`
}

// EventAttributes sind die eventspezifischen Felder einer Publikation.
type EventAttributes struct {
	Venue       string    `json:"venue"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	BookingLink string    `json:"booking_link"`
}

// PostAttributes sind die Felder eines generierten Posts.
type PostAttributes struct {
	Body string `json:"body"`
}

// TargetPublication ist eine Publikation (Werk, Event oder Post) auf der Zielplattform.
type TargetPublication struct {
	ID          string             `json:"id,omitempty"`
	Kind        PublicationKind    `json:"kind"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	ImageURL    string             `json:"image_url,omitempty"`
	Artwork     *ArtworkAttributes `json:"artwork,omitempty"`
	Event       *EventAttributes   `json:"event,omitempty"`
	Post        *PostAttributes    `json:"post,omitempty"`
	Creators    []CreationLink     `json:"creators,omitempty"`
}

// CreationRole ist die Rolle eines Accounts an einer Publikation.
type CreationRole string

const (
	RoleAuthor      CreationRole = "AUTHOR"
	RoleCoauthor    CreationRole = "COAUTHOR"
	RoleParticipant CreationRole = "PARTICIPANT"
)

// CreationLink verknüpft einen Account mit einer Publikation.
type CreationLink struct {
	UserID        string       `json:"user_id"`
	PublicationID string       `json:"publication_id"`
	Role          CreationRole `json:"role"`
}

// EntityKind ist der Schlüsselraum der Querverweis-Tabellen.
type EntityKind string

const (
	EntityArtist  EntityKind = "ARTIST"
	EntityArtwork EntityKind = "ARTWORK"
	EntityEvent   EntityKind = "EVENT"
	EntityPost    EntityKind = "POST"
	EntityUser    EntityKind = "USER"
)
