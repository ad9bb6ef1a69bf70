// Profile HTTP handlers.
//
// This file exposes the profile endpoints:
//   - POST   /profiles                          (create)
//   - GET    /profiles/{username}               (status)
//   - GET    /profiles/{username}/partner       (partner status)
//   - PUT    /profiles/{username}/presence      (present / absent)
//   - PUT    /profiles/{username}/location      (move)
//   - PUT    /profiles/{username}/emoto         (select or clear current emoto)
//   - PUT    /profiles/{username}/device-token  (set or clear push token)
//   - POST   /profiles/{username}/pair          (pair by code)
//   - DELETE /profiles/{username}/pair          (unpair)
//
// Every successful read or write answers with the status projection; the
// weather fields in it are served through the weather cache.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/emoto-backend/internal/services"
)

//
// DTOs
//

// CreateProfileRequest is the JSON payload for creating a profile.
// Coordinates accept JSON numbers or numeric strings.
type CreateProfileRequest struct {
	Username    string           `json:"username"     binding:"required" example:"alice"`
	Latitude    *decimal.Decimal `json:"latitude"     binding:"required" swaggertype:"number" example:"37.7749"`
	Longitude   *decimal.Decimal `json:"longitude"    binding:"required" swaggertype:"number" example:"-122.4194"`
	AvatarPath  *string          `json:"avatar_path"  example:"avatars/alice.png"`
	DeviceToken *string          `json:"device_token" example:"apns-3f2a..."`
}

// PresenceRequest sets whether the user is present.
type PresenceRequest struct {
	Present *bool `json:"present" binding:"required" example:"true"`
}

// LocationRequest moves the profile.
type LocationRequest struct {
	Latitude  *decimal.Decimal `json:"latitude"  binding:"required" swaggertype:"number" example:"37.8044"`
	Longitude *decimal.Decimal `json:"longitude" binding:"required" swaggertype:"number" example:"-122.2712"`
}

// CurrentEmotoRequest selects the current emoto; null clears it.
type CurrentEmotoRequest struct {
	EmotoID *uint `json:"emoto_id" example:"3"`
}

// DeviceTokenRequest sets the push token; null or blank clears it.
type DeviceTokenRequest struct {
	DeviceToken *string `json:"device_token" example:"apns-3f2a..."`
}

// PairRequest carries the partner's pair code.
type PairRequest struct {
	PairCode string `json:"pair_code" binding:"required" example:"K3Q9ZD"`
}

//
// Handlers
//

// CreateProfile godoc
// @ID          createProfile
// @Summary     Create a profile
// @Description Creates a profile, issues its pair code, and tries an initial weather lookup.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateProfileRequest  true  "Profile payload"
// @Success     201   {object}  domain.ProfileStatus
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409   {object}  handlers.ErrorResponse  "Username taken"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles [post]
func (h *Handlers) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username, latitude and longitude are required")
		return
	}

	ctx := c.Request.Context()
	p, err := h.profileSvc.Create(ctx, services.CreateProfileInput{
		Username:    req.Username,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		AvatarPath:  req.AvatarPath,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+p.Username)
	ok(c, http.StatusCreated, h.profileSvc.StatusSnapshot(ctx, p))
}

// GetProfileStatus godoc
// @ID          getProfileStatus
// @Summary     Get a profile's status
// @Description Returns the status projection. Expired weather is refreshed before answering.
// @Tags        Profiles
// @Produce     json
// @Param       username  path      string  true  "Username"
// @Success     200       {object}  domain.ProfileStatus
// @Failure     404       {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /profiles/{username} [get]
func (h *Handlers) GetProfileStatus(c *gin.Context) {
	st, err := h.profileSvc.Status(c.Request.Context(), c.Param("username"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// GetPartnerStatus godoc
// @ID          getPartnerStatus
// @Summary     Get the partner's status
// @Tags        Profiles
// @Produce     json
// @Param       username  path      string  true  "Username"
// @Success     200       {object}  domain.ProfileStatus
// @Failure     404       {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     409       {object}  handlers.ErrorResponse  "Not paired"
// @Router      /profiles/{username}/partner [get]
func (h *Handlers) GetPartnerStatus(c *gin.Context) {
	st, err := h.profileSvc.PartnerStatus(c.Request.Context(), c.Param("username"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// SetPresence godoc
// @ID          setPresence
// @Summary     Set presence
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       username  path      string                     true  "Username"
// @Param       body      body      handlers.PresenceRequest   true  "Presence"
// @Success     200       {object}  domain.ProfileStatus
// @Failure     400       {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404       {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /profiles/{username}/presence [put]
func (h *Handlers) SetPresence(c *gin.Context) {
	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "present is required")
		return
	}
	ctx := c.Request.Context()
	p, err := h.profileSvc.SetPresence(ctx, c.Param("username"), *req.Present)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.profileSvc.StatusSnapshot(ctx, p))
}

// UpdateLocation godoc
// @ID          updateLocation
// @Summary     Move a profile
// @Description Stores new coordinates; weather is refreshed right away when they change.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       username  path      string                     true  "Username"
// @Param       body      body      handlers.LocationRequest   true  "Coordinates"
// @Success     200       {object}  domain.ProfileStatus
// @Failure     400       {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404       {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /profiles/{username}/location [put]
func (h *Handlers) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "latitude and longitude are required")
		return
	}
	ctx := c.Request.Context()
	p, err := h.profileSvc.UpdateLocation(ctx, c.Param("username"), *req.Latitude, *req.Longitude)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.profileSvc.StatusSnapshot(ctx, p))
}

// SetCurrentEmoto godoc
// @ID          setCurrentEmoto
// @Summary     Select the current emoto
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       username  path      string                        true  "Username"
// @Param       body      body      handlers.CurrentEmotoRequest  true  "Emoto id or null"
// @Success     200       {object}  domain.ProfileStatus
// @Failure     404       {object}  handlers.ErrorResponse  "Profile or emoto not found"
// @Failure     422       {object}  handlers.ErrorResponse  "Emoto unavailable"
// @Router      /profiles/{username}/emoto [put]
func (h *Handlers) SetCurrentEmoto(c *gin.Context) {
	var req CurrentEmotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()
	p, err := h.profileSvc.SetCurrentEmoto(ctx, c.Param("username"), req.EmotoID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.profileSvc.StatusSnapshot(ctx, p))
}

// SetDeviceToken godoc
// @ID          setDeviceToken
// @Summary     Set the push token
// @Tags        Profiles
// @Accept      json
// @Param       username  path      string                       true  "Username"
// @Param       body      body      handlers.DeviceTokenRequest  true  "Token or null"
// @Success     204       {string}  string  "No Content"
// @Failure     400       {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404       {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /profiles/{username}/device-token [put]
func (h *Handlers) SetDeviceToken(c *gin.Context) {
	var req DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, err := h.profileSvc.SetDeviceToken(c.Request.Context(), c.Param("username"), req.DeviceToken); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// Pair godoc
// @ID          pairProfiles
// @Summary     Pair with another profile
// @Description Links the profile with the owner of pair_code, on both sides.
// @Tags        Pairing
// @Accept      json
// @Produce     json
// @Param       username  path      string                true  "Username"
// @Param       body      body      handlers.PairRequest  true  "Partner's pair code"
// @Success     200       {object}  domain.ProfileStatus  "The partner's status"
// @Failure     400       {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404       {object}  handlers.ErrorResponse  "Profile or pair code not found"
// @Failure     409       {object}  handlers.ErrorResponse  "Already paired"
// @Router      /profiles/{username}/pair [post]
func (h *Handlers) Pair(c *gin.Context) {
	var req PairRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PairCode) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "pair_code is required")
		return
	}
	ctx := c.Request.Context()
	username := c.Param("username")
	if _, err := h.profileSvc.Pair(ctx, username, req.PairCode); err != nil {
		failErr(c, err)
		return
	}
	st, err := h.profileSvc.PartnerStatus(ctx, username)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// Unpair godoc
// @ID          unpairProfiles
// @Summary     Unpair
// @Tags        Pairing
// @Param       username  path      string  true  "Username"
// @Success     204       {string}  string  "No Content"
// @Failure     404       {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     409       {object}  handlers.ErrorResponse  "Not paired"
// @Router      /profiles/{username}/pair [delete]
func (h *Handlers) Unpair(c *gin.Context) {
	if err := h.profileSvc.Unpair(c.Request.Context(), c.Param("username")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
