// Package domain defines the persistence models for profiles, emotos, and
// messages. These types are mapped with GORM and form the core data layer
// of the presence backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoordinatePlaces is the number of fractional digits stored for latitude
// and longitude.
const CoordinatePlaces = 6

// PairCodeLength is the fixed length of an issued pairing code.
const PairCodeLength = 6

// Emoto is a catalog entry a profile can show as its current mood or attach
// to a message. Entries are listed ordered by name.
//
// Fields:
//   - ID: auto-increment primary key.
//   - Name: display name.
//   - ImagePath: path of the artwork relative to the media base URL.
//   - Available: whether the entry may be selected by users.
type Emoto struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(200);not null;index"`
	ImagePath string    `json:"image_path" gorm:"type:varchar(500);not null"`
	Available bool      `json:"available"  gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Emoto.
func (Emoto) TableName() string { return "emotos" }

// WeatherSnapshot is the cached, location-derived weather data embedded in a
// Profile. FetchedAt is the time of the last successful provider lookup; a
// zero FetchedAt means no lookup has ever succeeded.
type WeatherSnapshot struct {
	City        string    `gorm:"type:varchar(100);not null;default:''"`
	Description string    `gorm:"type:varchar(100);not null;default:''"`
	TimeZone    string    `gorm:"type:varchar(100);not null;default:''"`
	Temperature int       `gorm:"not null;default:0"`
	IconURL     string    `gorm:"type:varchar(2000);not null;default:''"`
	FetchedAt   time.Time `gorm:"index"`
}

// Profile is a user's persisted identity plus presence, location, weather,
// and pairing state.
//
// The partner relation is a weak back-link stored as the partner's username
// and resolved on demand; it never owns the partner's lifetime.
type Profile struct {
	ID                uint            `gorm:"primaryKey"`
	Username          string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	PartnerUsername   *string         `gorm:"type:varchar(100);index"`
	Present           bool            `gorm:"not null"`
	PresenceTimestamp time.Time       `gorm:"not null"`
	CurrentEmotoID    *uint           `gorm:"index"`
	PairCode          *string         `gorm:"type:varchar(6);uniqueIndex"`
	AvatarPath        *string         `gorm:"type:varchar(500)"`
	Latitude          decimal.Decimal `gorm:"type:decimal(9,6);not null"`
	Longitude         decimal.Decimal `gorm:"type:decimal(9,6);not null"`
	DeviceToken       *string         `gorm:"type:varchar(200)"`
	Weather           WeatherSnapshot `gorm:"embedded;embeddedPrefix:weather_"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// CurrentEmoto is loaded on demand; clearing the emoto nulls the link.
	CurrentEmoto *Emoto `gorm:"foreignKey:CurrentEmotoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// Message is a short note authored by a profile, optionally carrying an
// emoto. CreatedTime is set once on insert at second precision and never
// changed afterwards.
type Message struct {
	ID             uint      `gorm:"primaryKey"`
	Text           string    `gorm:"type:varchar(400);not null"`
	EmotoID        *uint     `gorm:"index"`
	AuthorUsername string    `gorm:"type:varchar(100);not null;index"`
	CreatedTime    time.Time `gorm:"not null;index"`

	Emoto  *Emoto  `gorm:"foreignKey:EmotoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Author Profile `gorm:"foreignKey:AuthorUsername;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
