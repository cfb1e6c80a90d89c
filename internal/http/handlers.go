package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/nightpost/relay/internal/config"
	"github.com/nightpost/relay/internal/models"
	"github.com/nightpost/relay/internal/relay"
	"github.com/nightpost/relay/internal/store"
	"github.com/nightpost/relay/internal/ws"
)

// --- Configuration Constants ---
const (
	maxTextLength  = 4000
	feedLimit      = 50
	rateLimitRPS   = 1.0 / 3.0 // 1 submission every 3 seconds
	rateLimitBurst = 1
)

// --- Structs for request binding ---
type EventInput struct {
	SenderID    string     `json:"senderId" binding:"required"`
	DisplayName string     `json:"displayName"`
	Handle      string     `json:"handle"`
	Kind        relay.Kind `json:"kind" binding:"required,oneof=text photo video voice"`
	Text        string     `json:"text" binding:"max=4000"`
	MediaRef    string     `json:"mediaRef"`
}

type SelectActionInput struct {
	SenderID string       `json:"senderId" binding:"required"`
	Action   relay.Action `json:"action" binding:"required"`
}

type StopWordInput struct {
	Word string `json:"word" binding:"required,min=1,max=64"`
}

// WsMessage is the JSON envelope delivered on the channel sockets.
type WsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// PublicEntry is the public-channel projection of a ContentLog row. The raw
// sender identity stays confined to the admin-gated review record; public
// consumers see only the pseudonymous rendered body.
type PublicEntry struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	MediaRef  string    `json:"mediaRef,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func publicEntry(entry *models.ContentLog) PublicEntry {
	return PublicEntry{
		ID:        entry.ID,
		Kind:      entry.Kind,
		MediaRef:  entry.MediaRef,
		Body:      entry.Body,
		CreatedAt: entry.CreatedAt,
	}
}

// --- Rate Limiter ---
type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.RWMutex
	rps      rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      r,
		burst:    b,
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please wait."})
			return
		}
		c.Next()
	}
}

// --- Channel sinks ---

// channelSink delivers a rendered item to one channel: it appends the audit
// log entry, then broadcasts to that channel's websocket hub. Anonymized
// sinks broadcast the PublicEntry projection instead of the full record.
type channelSink struct {
	channel   string
	hub       *ws.Hub
	logs      *store.ContentLogs
	anonymize bool
}

func (s *channelSink) Deliver(body string, item relay.ContentItem) error {
	entry := &models.ContentLog{
		SenderID: item.SenderID,
		Kind:     string(item.Kind),
		Text:     item.Text,
		MediaRef: item.MediaRef,
		Channel:  s.channel,
		Body:     body,
	}
	if err := s.logs.Append(entry); err != nil {
		return err
	}
	if s.anonymize {
		broadcast(s.hub, WsMessage{Type: "content", Data: publicEntry(entry)})
	} else {
		broadcast(s.hub, WsMessage{Type: "content", Data: entry})
	}
	return nil
}

func broadcast(hub *ws.Hub, msg WsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshalling WS message: %v", err)
		return
	}
	hub.Broadcast <- payload
}

// --- Handlers ---
type Env struct {
	Cfg          config.Config
	Participants *store.Participants
	StopWords    *store.StopWords
	Logs         *store.ContentLogs
	Moderation   *relay.Router
	Panel        *relay.AdminPanel
	PublicHub    *ws.Hub
	ReviewHub    *ws.Hub
}

// NewEnv wires the stores, channel sinks, moderation router, and admin panel
// for the given database and hubs.
func NewEnv(cfg config.Config, database *gorm.DB, publicHub, reviewHub *ws.Hub) *Env {
	participants := store.NewParticipants(database)
	stopWords := store.NewStopWords(database)
	logs := store.NewContentLogs(database)

	public := &channelSink{channel: cfg.PublicChannel, hub: publicHub, logs: logs, anonymize: true}
	review := &channelSink{channel: cfg.ReviewChannel, hub: reviewHub, logs: logs}

	return &Env{
		Cfg:          cfg,
		Participants: participants,
		StopWords:    stopWords,
		Logs:         logs,
		Moderation:   relay.NewRouter(participants, stopWords, public, review),
		Panel:        relay.NewAdminPanel(cfg.AdminID, participants),
		PublicHub:    publicHub,
		ReviewHub:    reviewHub,
	}
}

// SubmitEvent is the single inbound edge of the transport boundary: one
// event per request, one terminal outcome per event. Text from the admin is
// intercepted by the panel while a session is pending; everything else flows
// through the moderation router.
func (e *Env) SubmitEvent(c *gin.Context) {
	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Kind.Media() && input.MediaRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media events require a mediaRef"})
		return
	}

	if input.Kind == relay.KindText {
		if reply, handled := e.Panel.HandleInput(input.SenderID, input.Text); handled {
			c.JSON(http.StatusOK, gin.H{"status": "admin_reply", "reply": reply})
			return
		}
	}

	item := relay.ContentItem{
		SenderID:    input.SenderID,
		DisplayName: input.DisplayName,
		Handle:      input.Handle,
		Kind:        input.Kind,
		Text:        input.Text,
		MediaRef:    input.MediaRef,
	}

	outcome, err := e.Moderation.Submit(item)
	if err != nil {
		log.Printf("Error processing event from %s: %v", input.SenderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(outcomeStatusCode(outcome.Status), outcome)
}

func outcomeStatusCode(status relay.Status) int {
	switch status {
	case relay.StatusPublished:
		return http.StatusCreated
	case relay.StatusPendingReview:
		return http.StatusAccepted
	case relay.StatusRejectedBanned:
		return http.StatusForbidden
	case relay.StatusRejectedFilter:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

// AdminPanelMenu lists the selectable actions. Requests naming any identity
// other than the configured admin are ignored.
func (e *Env) AdminPanelMenu(c *gin.Context) {
	if c.Query("senderId") != e.Cfg.AdminID {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": e.Panel.Actions()})
}

// SelectAction arms a pending admin session. Selections by other identities
// are ignored without error.
func (e *Env) SelectAction(c *gin.Context) {
	var input SelectActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	prompt, ok := e.Panel.Select(input.SenderID, input.Action)
	if !ok {
		if input.SenderID != e.Cfg.AdminID {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

// GetPublicFeed serves the pseudonymous projection only; the raw rows stay
// behind the admin-gated review feed.
func (e *Env) GetPublicFeed(c *gin.Context) {
	entries, err := e.Logs.ByChannel(e.Cfg.PublicChannel, feedLimit)
	if err != nil {
		log.Printf("Error fetching %s feed: %v", e.Cfg.PublicChannel, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}
	projected := make([]PublicEntry, 0, len(entries))
	for i := range entries {
		projected = append(projected, publicEntry(&entries[i]))
	}
	c.JSON(http.StatusOK, projected)
}

func (e *Env) GetReviewFeed(c *gin.Context) {
	entries, err := e.Logs.ByChannel(e.Cfg.ReviewChannel, feedLimit)
	if err != nil {
		log.Printf("Error fetching %s feed: %v", e.Cfg.ReviewChannel, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (e *Env) ListStopWords(c *gin.Context) {
	words, err := e.StopWords.Words()
	if err != nil {
		log.Printf("Error listing stop words: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stop words"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

func (e *Env) AddStopWord(c *gin.Context) {
	var input StopWordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if err := e.StopWords.Add(input.Word); err != nil {
		log.Printf("Error adding stop word: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add stop word"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Stop word added"})
}

func (e *Env) RemoveStopWord(c *gin.Context) {
	removed, err := e.StopWords.Remove(c.Param("word"))
	if err != nil {
		log.Printf("Error removing stop word: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove stop word"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stop word not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stop word removed"})
}
