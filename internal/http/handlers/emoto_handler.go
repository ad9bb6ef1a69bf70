// Emoto catalog HTTP handlers.
//
//   - GET  /emotos       (list, ordered by name, weak ETag)
//   - GET  /emotos/{id}  (one entry)
//   - POST /emotos       (add an entry)
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/utils"
)

// CreateEmotoRequest is the JSON payload for adding a catalog entry. A bare
// filename is stored under a timestamped emotos/ path.
type CreateEmotoRequest struct {
	Name      string `json:"name"       binding:"required" example:"Sleepy"`
	ImagePath string `json:"image_path" binding:"required" example:"sleepy.png"`
}

// ListEmotosResponse wraps the catalog.
type ListEmotosResponse struct {
	Emotos []domain.EmotoJSON `json:"emotos"`
}

// ListEmotos godoc
// @ID          listEmotos
// @Summary     List emotos
// @Description Returns the catalog ordered by name. Supports weak ETag via If-None-Match.
// @Tags        Emotos
// @Produce     json
// @Param       available      query   bool    false "Only entries users may select"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListEmotosResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /emotos [get]
func (h *Handlers) ListEmotos(c *gin.Context) {
	ctx := c.Request.Context()
	onlyAvailable := utils.ParseBool(c.Query("available"), false)

	if db := h.emotoDB(); db != nil {
		if count, maxTS, err := repo.EmotosStats(ctx, db); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"emotos:%t:%d:%d"`, onlyAvailable, count, ts)
			if notModified(c, etag) {
				return
			}
		}
	}

	items, err := h.emotoSvc.List(ctx, onlyAvailable)
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]domain.EmotoJSON, 0, len(items))
	for _, e := range items {
		out = append(out, e.JSON(h.mediaBase))
	}
	ok(c, http.StatusOK, ListEmotosResponse{Emotos: out})
}

// GetEmoto godoc
// @ID          getEmoto
// @Summary     Get an emoto
// @Tags        Emotos
// @Produce     json
// @Param       id   path      int  true  "Emoto id"
// @Success     200  {object}  domain.EmotoJSON
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Emoto not found"
// @Router      /emotos/{id} [get]
func (h *Handlers) GetEmoto(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	e, err := h.emotoSvc.Get(c.Request.Context(), uint(id))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, e.JSON(h.mediaBase))
}

// CreateEmoto godoc
// @ID          createEmoto
// @Summary     Add an emoto
// @Tags        Emotos
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateEmotoRequest  true  "Catalog entry"
// @Success     201   {object}  domain.EmotoJSON
// @Failure     400   {object}  handlers.ErrorResponse "Validation failed"
// @Failure     500   {object}  handlers.ErrorResponse "Internal error"
// @Router      /emotos [post]
func (h *Handlers) CreateEmoto(c *gin.Context) {
	var req CreateEmotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and image_path are required")
		return
	}
	e, err := h.emotoSvc.Create(c.Request.Context(), req.Name, req.ImagePath)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, e.JSON(h.mediaBase))
}
