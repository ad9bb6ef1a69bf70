package domain

import (
	"strings"
	"time"
)

// EmotoJSON is the wire projection of an Emoto.
type EmotoJSON struct {
	ID   uint   `json:"id"   example:"3"`
	URL  string `json:"url"  example:"/media/emotos/20240101120000.png"`
	Name string `json:"name" example:"Sleepy"`
}

// MessageJSON is the wire projection of a Message.
type MessageJSON struct {
	ID          uint       `json:"id"           example:"12"`
	Text        string     `json:"text"         example:"on my way"`
	Emoto       *EmotoJSON `json:"emoto"`
	Author      string     `json:"author"       example:"alice"`
	CreatedTime time.Time  `json:"created_time" example:"2024-05-01T09:30:00Z"`
}

// ProfileStatus is the read-only status projection of a Profile. It is built
// fresh on every request and is never stored.
type ProfileStatus struct {
	Username          string     `json:"username"           example:"alice"`
	AvatarURL         *string    `json:"avatar_url"`
	Present           bool       `json:"present"`
	PresenceTimestamp time.Time  `json:"presence_timestamp" example:"2024-05-01T09:30:00Z"`
	City              string     `json:"city"               example:"San Francisco"`
	Latitude          float64    `json:"latitude"           example:"37.7749"`
	Longitude         float64    `json:"longitude"          example:"-122.4194"`
	TimeZone          string     `json:"time_zone"          example:"UTC-07:00"`
	Weather           string     `json:"weather"            example:"Clear"`
	Temperature       int        `json:"temperature"        example:"61"`
	WeatherIconURL    string     `json:"weather_icon_url"   example:"https://openweathermap.org/img/wn/01d@2x.png"`
	PairCode          *string    `json:"pair_code"          example:"K3Q9ZD"`
	CurrentEmoto      *EmotoJSON `json:"current_emoto"`
}

// JSON projects e for clients, resolving its image against mediaBase.
func (e Emoto) JSON(mediaBase string) EmotoJSON {
	return EmotoJSON{ID: e.ID, URL: MediaURL(mediaBase, e.ImagePath), Name: e.Name}
}

// JSON projects m for clients. The emoto association must be preloaded for
// it to appear in the output.
func (m Message) JSON(mediaBase string) MessageJSON {
	out := MessageJSON{
		ID:          m.ID,
		Text:        m.Text,
		Author:      m.AuthorUsername,
		CreatedTime: m.CreatedTime.UTC(),
	}
	if m.Emoto != nil {
		ej := m.Emoto.JSON(mediaBase)
		out.Emoto = &ej
	}
	return out
}

// MediaURL joins a stored media path onto base. Absolute URLs are returned
// unchanged.
func MediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
