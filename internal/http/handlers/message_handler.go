// Message HTTP handlers.
//
//   - POST /messages        (post as X-Username; Idempotency-Key supported)
//   - GET  /messages        (paginated, optionally scoped to a pair)
//   - GET  /messages/{id}   (one message)
//
// Idempotency:
// When the request carries an Idempotency-Key that already produced a
// message for the same user and route, the stored message is returned with
// `Idempotency-Replayed: true` and nothing new is written.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/http/middleware"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/utils"
)

//
// DTOs
//

// PostMessageRequest is the JSON payload for posting a message.
type PostMessageRequest struct {
	Text    string `json:"text"     binding:"required" example:"on my way"`
	EmotoID *uint  `json:"emoto_id" example:"3"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListMessagesResponse contains a page of messages and pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.MessageJSON `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessage
// @Summary     Post a message
// @Description Stores a message authored by X-Username, optionally with an emoto.
// @Description Supports idempotency via the Idempotency-Key header (same key → same message).
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       X-Username       header  string  true  "Author username"  example(alice)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.PostMessageRequest  true  "Message payload"
// @Success     201  {object}  domain.MessageJSON  "Created"
// @Success     200  {object}  domain.MessageJSON  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse  "Author or emoto not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Emoto unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()
	author := middleware.Username(c)
	if author == "" {
		fail(c, http.StatusBadRequest, ErrCodeMissingUsername, middleware.HeaderUsername+" header is required")
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text is required")
		return
	}

	scope := c.FullPath()
	idemKey, _ := middleware.GetIdempotencyKey(c)
	db := h.messageDB()

	if idemKey != "" && middleware.IsReplay(c) && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, author, scope, idemKey, time.Now().UTC()); err == nil {
			if prev, err := h.msgSvc.Get(ctx, rec.MessageID); err == nil {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				ok(c, http.StatusOK, prev.JSON(h.mediaBase))
				return
			}
		}
	}

	m, err := h.msgSvc.Post(ctx, author, req.Text, req.EmotoID)
	if err != nil {
		failErr(c, err)
		return
	}

	if idemKey != "" && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, author, scope, idemKey, m.ID, http.StatusCreated, h.idemTTL); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency record failed")
		}
	}

	c.Header("Location", scope+"/"+strconv.FormatUint(uint64(m.ID), 10))
	ok(c, http.StatusCreated, m.JSON(h.mediaBase))
}

// GetMessage godoc
// @ID          getMessage
// @Summary     Get a message
// @Tags        Messages
// @Produce     json
// @Param       id   path      int  true  "Message id"
// @Success     200  {object}  domain.MessageJSON
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Router      /messages/{id} [get]
func (h *Handlers) GetMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	m, err := h.msgSvc.Get(c.Request.Context(), uint(id))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, m.JSON(h.mediaBase))
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages
// @Description Returns messages in creation order. With ?username, only that profile's and its partner's messages.
// @Tags        Messages
// @Produce     json
// @Param       username       query   string  false "Scope to a profile and its partner"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListMessagesResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse "Profile not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	username := strings.TrimSpace(c.Query("username"))
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"), utils.DefaultPageLimits)

	var authors []string
	if username != "" {
		var err error
		if authors, err = h.msgSvc.PairAuthors(ctx, username); err != nil {
			failErr(c, err)
			return
		}
	}

	if db := h.messageDB(); db != nil {
		if count, maxTS, err := repo.MessagesStats(ctx, db, authors); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"messages:%s:%d:%d:%d:%d"`, strings.Join(authors, ","), page, pageSize, count, ts)
			if notModified(c, etag) {
				return
			}
		}
	}

	var (
		items []domain.Message
		total int64
		err   error
	)
	if username != "" {
		items, total, err = h.msgSvc.ListForPair(ctx, username, page, pageSize)
	} else {
		items, total, err = h.msgSvc.ListPage(ctx, page, pageSize)
	}
	if err != nil {
		failErr(c, err)
		return
	}

	out := make([]domain.MessageJSON, 0, len(items))
	for _, m := range items {
		out = append(out, m.JSON(h.mediaBase))
	}
	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: out,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
