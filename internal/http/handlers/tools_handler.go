// Summarization tool HTTP handlers.
//
// This file exposes the session-gated tools endpoints:
//   - POST   /tools/summary        (summarize a video link)
//   - POST   /tools/updateHistory  (append a history entry)
//   - DELETE /tools/deleteHistory  (remove a history entry by id)
//
// The duplicate-link case is deliberately not an opaque failure: the
// response carries the previously stored result so clients can render it
// without re-requesting.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maple-video/maple-backend/internal/domain"
	"github.com/maple-video/maple-backend/internal/http/middleware"
	"github.com/maple-video/maple-backend/internal/services"
)

//
// DTOs
//

// SummaryRequest is the JSON payload for a summarization call.
type SummaryRequest struct {
	Link string `json:"link" binding:"required" example:"https://youtu.be/dQw4w9WgXcQ"`
}

// DuplicateSummaryResponse is returned when the link is already in the
// user's history; Data echoes the stored result.
type DuplicateSummaryResponse struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Exists  bool                  `json:"exists"`
	Data    *domain.SummaryResult `json:"data"`
}

// UpdateHistoryRequest is the JSON payload for appending a history entry.
type UpdateHistoryRequest struct {
	History domain.HistoryEntry `json:"history" binding:"required"`
}

// DeleteHistoryRequest is the JSON payload for removing a history entry.
type DeleteHistoryRequest struct {
	HistoryID string `json:"historyId"`
}

// HistoryResponse wraps the post-operation history list.
type HistoryResponse struct {
	History []domain.HistoryEntry `json:"history"`
}

//
// Handlers
//

// Summary godoc
// @ID          summary
// @Summary     Summarize a video link
// @Description Resolves the link, fetches metadata, and generates a structured summary. A link already in the user's history short-circuits with the stored result.
// @Tags        Tools
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SummaryRequest  true  "Summarization payload"
// @Success     200  {object}  domain.SummaryResult
// @Failure     400  {object}  handlers.ErrorResponse  "Missing/invalid link or duplicate"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid session"
// @Failure     404  {object}  handlers.ErrorResponse  "Video not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /tools/summary [post]
func (h *Handlers) Summary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Link is required")
		return
	}

	result, err := h.summaries.Summarize(c.Request.Context(), middleware.UserID(c), req.Link)
	switch {
	case err == nil:
		ok(c, http.StatusOK, result)

	case errors.Is(err, services.ErrDuplicateEntry):
		c.AbortWithStatusJSON(http.StatusBadRequest, DuplicateSummaryResponse{
			Code:    ErrCodeDuplicateEntry,
			Message: "Video already exists in your history",
			Exists:  true,
			Data:    result,
		})

	case errors.Is(err, services.ErrMissingLink):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Link is required")

	case errors.Is(err, services.ErrInvalidURL):
		fail(c, http.StatusBadRequest, ErrCodeInvalidURL, "Invalid YouTube URL")

	case errors.Is(err, services.ErrVideoNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Video not found")

	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")

	default:
		fail(c, http.StatusInternalServerError, ErrCodeUpstreamFailed, "Failed to generate summary")
	}
}

// UpdateHistory godoc
// @ID          updateHistory
// @Summary     Append a history entry
// @Description Adds one summarized video to the user's history; entries are deduplicated by link.
// @Tags        Tools
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.UpdateHistoryRequest  true  "History entry payload"
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad payload or duplicate link"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid session"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /tools/updateHistory [post]
func (h *Handlers) UpdateHistory(c *gin.Context) {
	var req UpdateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "history entry is required")
		return
	}

	history, err := h.summaries.AppendHistory(c.Request.Context(), middleware.UserID(c), req.History)
	switch {
	case err == nil:
		ok(c, http.StatusOK, HistoryResponse{History: history})

	case errors.Is(err, services.ErrDuplicateEntry):
		fail(c, http.StatusBadRequest, ErrCodeDuplicateEntry, "Video already exists in your history")

	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "User not found")

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// DeleteHistory godoc
// @ID          deleteHistory
// @Summary     Remove a history entry
// @Description Pulls the entry with the given id from the user's history. Removing an absent id succeeds with the list unchanged.
// @Tags        Tools
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.DeleteHistoryRequest  true  "Entry id payload"
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing historyId"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid session"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /tools/deleteHistory [delete]
func (h *Handlers) DeleteHistory(c *gin.Context) {
	var req DeleteHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "historyId is required")
		return
	}

	history, err := h.summaries.RemoveHistory(c.Request.Context(), middleware.UserID(c), req.HistoryID)
	switch {
	case err == nil:
		ok(c, http.StatusOK, HistoryResponse{History: history})

	case errors.Is(err, services.ErrMissingHistoryID):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "historyId is required")

	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "User not found")

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
