package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/records"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/services"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordView is a record as listed by the API.
type RecordView struct {
	Index        int    `json:"index"`
	Key          string `json:"key"`
	Status       string `json:"status"`
	DaysLeft     int    `json:"days_left"`
	HistoryCount int    `json:"history_count"`
	URL          string `json:"url"`
	CreatedAt    string `json:"created_at"`
	Expiration   string `json:"expiration"`
}

// RecordsHandler serves the record store over HTTP. Store access is
// serialized so concurrent requests cannot lose each other's updates.
type RecordsHandler struct {
	store  storage.Storage
	events services.Publisher
	now    func() time.Time
	log    *zap.Logger
	mu     sync.Mutex
}

func NewRecordsHandler(store storage.Storage, events services.Publisher, now func() time.Time, log *zap.Logger) *RecordsHandler {
	if events == nil {
		events = services.NopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &RecordsHandler{store: store, events: events, now: now, log: log}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *RecordsHandler) List(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	store, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load records", err)
		return
	}

	now := h.now()
	views := make([]RecordView, 0, store.Len())
	store.Each(func(key string, rec models.Record) {
		views = append(views, newRecordView(len(views)+1, key, rec, now))
	})
	c.JSON(http.StatusOK, gin.H{"records": views})
}

func (h *RecordsHandler) History(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	store, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load records", err)
		return
	}
	rec, ok := store.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current": newRecordView(0, key, rec, h.now()),
		"history": rec.History,
	})
}

// Delete removes one record by key, or several by listing number with
// ?index=1,3.
func (h *RecordsHandler) Delete(c *gin.Context) {
	key, indexParam := c.Query("key"), c.Query("index")
	if key == "" && indexParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key or index is required"})
		return
	}

	var indices []int
	if indexParam != "" {
		var err error
		if indices, err = records.ParseIndices(indexParam); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := c.Request.Context()
	store, err := h.store.Load(ctx)
	if err != nil {
		h.fail(c, "failed to load records", err)
		return
	}

	var deleted []string
	if key != "" {
		if !store.Delete(key) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		deleted = []string{key}
	} else {
		deleted = records.DeleteIndices(store, indices)
	}

	if len(deleted) > 0 {
		if err := h.store.Save(ctx, store); err != nil {
			h.fail(c, "failed to save records", err)
			return
		}
		h.events.Publish(services.SubjectDeleted, services.RecordEvent{
			Action:     services.SubjectDeleted,
			Keys:       deleted,
			OccurredAt: h.now(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"deleted": nonNil(deleted)})
}

func (h *RecordsHandler) Sweep(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := c.Request.Context()
	store, err := h.store.Load(ctx)
	if err != nil {
		h.fail(c, "failed to load records", err)
		return
	}

	now := h.now()
	res, err := records.Sweep(store, now)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if len(res.Removed) > 0 {
		if err := h.store.Save(ctx, store); err != nil {
			h.fail(c, "failed to save records", err)
			return
		}
		h.events.Publish(services.SubjectSwept, services.RecordEvent{
			Action:     services.SubjectSwept,
			Keys:       res.Removed,
			OccurredAt: now,
		})
	}

	retained := make([]gin.H, 0, len(res.Retained))
	for _, r := range res.Retained {
		retained = append(retained, gin.H{"key": r.Key, "days_left": r.DaysLeft})
	}
	c.JSON(http.StatusOK, gin.H{"removed": nonNil(res.Removed), "retained": retained})
}

func (h *RecordsHandler) fail(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func newRecordView(index int, key string, rec models.Record, now time.Time) RecordView {
	view := RecordView{
		Index:        index,
		Key:          key,
		HistoryCount: len(rec.History),
		URL:          rec.URL,
		CreatedAt:    rec.CreatedAt,
		Expiration:   rec.Expiration,
	}
	status, days, err := records.CheckStored(rec.Expiration, now)
	if err != nil {
		view.Status = "INVALID"
		return view
	}
	view.Status = status.String()
	view.DaysLeft = days
	return view
}

func nonNil(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}
