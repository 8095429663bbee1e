package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"intentbot/internal/app"
	"intentbot/internal/models"
	"intentbot/internal/services"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// RegisterRoutes mounts the API under /api/v1 plus /health and /ping.
func (h *APIHandler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/classify", h.ClassifyHandler)
		v1.POST("/reply", h.ReplyHandler)
		v1.POST("/messages", h.EnqueueMessageHandler)
		v1.GET("/labels", h.LabelsHandler)

		historyGroup := v1.Group("/history")
		{
			historyGroup.GET("", h.ListHistoryHandler)
			historyGroup.GET("/:message_id", h.MessageHistoryHandler)
		}

		v1.GET("/jobs/:id", h.GetJobHandler)
	}

	router.GET("/health", h.HealthHandler)
	router.GET("/ping", h.PingHandler)
}

type MessageRequest struct {
	Text      string `json:"text"`
	MessageID string `json:"message_id,omitempty"`
	FromBot   bool   `json:"from_bot,omitempty"`
}

// parseMessageRequest binds the JSON body. An empty message_id means the
// server assigns one.
func parseMessageRequest(c *gin.Context) (MessageRequest, uuid.UUID, error) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, uuid.Nil, err
	}
	if req.MessageID == "" {
		return req, uuid.Nil, nil
	}
	id, err := uuid.Parse(req.MessageID)
	if err != nil {
		return req, uuid.Nil, fmt.Errorf("invalid message_id: %w", err)
	}
	return req, id, nil
}

func (h *APIHandler) ClassifyHandler(c *gin.Context) {
	if h.App.Responder == nil {
		Unavailable(c, "classifier is not loaded")
		return
	}
	req, _, err := parseMessageRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		BadRequest(c, "text is required")
		return
	}

	result, err := h.App.Responder.ClassifyMessage(c.Request.Context(), req.Text)
	if err != nil {
		Internal(c, "classify message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *APIHandler) ReplyHandler(c *gin.Context) {
	received := time.Now()
	if h.App.Responder == nil {
		Unavailable(c, "classifier is not loaded")
		return
	}
	req, id, err := parseMessageRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	reply, err := h.App.Responder.Reply(c.Request.Context(), services.Message{
		ID:         id,
		Text:       req.Text,
		FromBot:    req.FromBot,
		ReceivedAt: received,
	})
	switch {
	case errors.Is(err, models.ErrEmptyMessage):
		BadRequest(c, "text is required")
		return
	case errors.Is(err, models.ErrBotMessage):
		Unprocessable(c, "messages from the bot are not answered")
		return
	case err != nil:
		Internal(c, "reply", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reply})
}

// EnqueueMessageHandler queues a message for the worker and returns the job ID.
func (h *APIHandler) EnqueueMessageHandler(c *gin.Context) {
	if h.App.JobClient == nil {
		Unavailable(c, "background jobs are disabled (redis.address is not set)")
		return
	}
	req, id, err := parseMessageRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		BadRequest(c, "text is required")
		return
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	jobID, err := h.App.JobClient.EnqueueClassifyJob(c.Request.Context(), id, req.Text)
	if err != nil {
		Internal(c, "enqueue message", err)
		return
	}
	log.WithFields(log.Fields{"job_id": jobID, "message_id": id}).Info("API: queued message")
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"job_id": jobID, "message_id": id}})
}

type LabelsResponse struct {
	Labels          []string `json:"labels"`
	ClosingCategory string   `json:"closing_category"`
	Unanswered      []string `json:"unanswered,omitempty"`
}

func (h *APIHandler) LabelsHandler(c *gin.Context) {
	if h.App.Responder == nil {
		Unavailable(c, "classifier is not loaded")
		return
	}
	labels := h.App.Responder.Labels()
	resolver := h.App.Responder.Resolver()
	resp := LabelsResponse{Labels: labels, ClosingCategory: resolver.ClosingCategory()}
	for _, l := range resolver.Missing(labels) {
		if l != resp.ClosingCategory {
			resp.Unanswered = append(resp.Unanswered, l)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parsePagination(c *gin.Context) (limit, offset int, err error) {
	limit, offset = 20, 0
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

func (h *APIHandler) ListHistoryHandler(c *gin.Context) {
	if h.App.HistoryStore == nil {
		Unavailable(c, "classification history is disabled (database.dsn is not set)")
		return
	}
	limit, offset, err := parsePagination(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	records, err := h.App.HistoryStore.ListClassifications(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, "list history", err)
		return
	}
	if records == nil {
		records = []*models.ClassificationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *APIHandler) MessageHistoryHandler(c *gin.Context) {
	if h.App.HistoryStore == nil {
		Unavailable(c, "classification history is disabled (database.dsn is not set)")
		return
	}
	id, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		BadRequest(c, "Invalid message ID")
		return
	}
	records, err := h.App.HistoryStore.ListMessageClassifications(c.Request.Context(), id)
	if err != nil {
		Internal(c, "load message history", err)
		return
	}
	if len(records) == 0 {
		NotFound(c, "No history for message "+id.String())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *APIHandler) GetJobHandler(c *gin.Context) {
	if h.App.JobStore == nil {
		Unavailable(c, "job tracking is disabled (database.dsn is not set)")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "Invalid job ID")
		return
	}
	job, err := h.App.JobStore.GetJob(c.Request.Context(), id)
	if err != nil {
		StoreError(c, "load job "+id.String(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": job})
}

// HealthHandler reports ok, or 503 when the configured store is unreachable.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	status := gin.H{
		"status":     "ok",
		"classifier": h.App.Responder != nil,
		"history":    h.App.Store != nil,
		"jobs":       h.App.JobClient != nil,
	}
	if h.App.Store != nil {
		if err := h.App.Store.Ping(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}
	c.JSON(http.StatusOK, status)
}

func (h *APIHandler) PingHandler(c *gin.Context) {
	received := time.Now()
	c.JSON(http.StatusOK, gin.H{"reply": services.Pong(received)})
}
