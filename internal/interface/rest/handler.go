package rest

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/aichampion/hall/internal/domain"
	"github.com/aichampion/hall/internal/session"
	"github.com/aichampion/hall/internal/usecase"
)

const (
	sessionCookieName = "hall_session"
	sessionCtxKey     = "hall-session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const eventPingInterval = 30 * time.Second

// EventSource feeds the websocket endpoint with hall change events.
type EventSource interface {
	Subscribe(ctx context.Context) <-chan domain.Event
}

type Handler struct {
	champions *usecase.ChampionUsecase
	refine    *usecase.RefineUsecase
	blobs     usecase.BlobStore
	sessions  *session.Registry
	signal    EventSource
}

func NewHandler(
	champions *usecase.ChampionUsecase,
	refine *usecase.RefineUsecase,
	blobs usecase.BlobStore,
	sessions *session.Registry,
	signal EventSource,
) *Handler {
	return &Handler{
		champions: champions,
		refine:    refine,
		blobs:     blobs,
		sessions:  sessions,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1", h.sessionMiddleware)
	g.GET("/champions", h.handleList)
	g.POST("/champions", h.handleRegister)
	g.GET("/champions/:id", h.handleDetail)
	g.PUT("/champions/:id", h.handleUpdate)
	g.DELETE("/champions/:id", h.handleDelete)
	g.POST("/champions/:id/refine", h.handleManualRefine)
	g.GET("/champions/:id/ownership", h.handleOwnership)
	g.POST("/portraits", h.handlePortraitUpload)
	g.GET("/events", h.handleEvents)
}

// sessionMiddleware resolves the caller's session from a cookie, minting a
// fresh id on first contact. The session object carries the ownership ledger
// and the refinement memo for this browser.
func (h *Handler) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			id = cookie.Value
		} else {
			id = h.sessions.NewID()
			c.SetCookie(&http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(sessionCtxKey, h.sessions.Get(id))
		return next(c)
	}
}

func currentSession(c echo.Context) *session.Session {
	return c.Get(sessionCtxKey).(*session.Session)
}

type championRequest struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	Role        string `json:"role"`
	Tier        string `json:"tier"`
	Status      string `json:"status"`
	Vision      string `json:"vision"`
	Achievement string `json:"achievement"`
	ImageURL    string `json:"imageUrl"`
	ProjectURL  string `json:"projectUrl"`
	Email       string `json:"email"`
	Secret      string `json:"secret"`
}

func (r championRequest) draft() domain.ChampionDraft {
	return domain.ChampionDraft{
		Name:        r.Name,
		Department:  r.Department,
		Role:        r.Role,
		Tier:        r.Tier,
		Status:      r.Status,
		Vision:      r.Vision,
		Achievement: r.Achievement,
		ImageURL:    r.ImageURL,
		ProjectURL:  r.ProjectURL,
		Email:       r.Email,
		Secret:      r.Secret,
	}
}

// credentialsRequest is the credential challenge payload for guarded actions.
type credentialsRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

func (r credentialsRequest) creds() usecase.Credentials {
	return usecase.Credentials{Email: r.Email, Secret: r.Secret}
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	champions, err := h.champions.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, presentChampions(champions))
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req championRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	champion, err := h.champions.Register(ctx, currentSession(c), req.draft())
	if err != nil {
		if errors.Is(err, domain.ValidationError{}) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, presentChampion(champion))
}

// handleDetail serves a detail view: the view count is bumped, the row is
// returned immediately, and the automatic refinement pass runs in the
// background. Closing the view never aborts an in-flight pass.
func (h *Handler) handleDetail(c echo.Context) error {
	ctx := c.Request().Context()
	sess := currentSession(c)

	champion, err := h.champions.View(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "champion not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	go h.refine.Auto(context.WithoutCancel(ctx), sess, champion)

	if refined, ok := sess.ViewOf(champion.ID); ok {
		// Enhanced values that failed to persist earlier still show for
		// the session that produced them.
		refined.ViewCount = champion.ViewCount
		champion = refined
	}

	return c.JSON(http.StatusOK, presentChampion(champion))
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		championRequest
		Credentials credentialsRequest `json:"credentials"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	champion, err := h.champions.Update(ctx, currentSession(c), c.Param("id"), req.draft(), req.Credentials.creds())
	if err != nil {
		return h.guardedError(c, err)
	}
	return c.JSON(http.StatusOK, presentChampion(champion))
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.champions.Delete(ctx, currentSession(c), c.Param("id"), req.creds()); err != nil {
		return h.guardedError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) handleManualRefine(c echo.Context) error {
	ctx := c.Request().Context()
	sess := currentSession(c)
	id := c.Param("id")

	var req struct {
		Credentials credentialsRequest `json:"credentials"`
		Portrait    bool               `json:"portrait"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.champions.Authorize(ctx, sess, id, req.Credentials.creds()); err != nil {
		return h.guardedError(c, err)
	}

	champion, err := h.refine.Manual(ctx, sess, id, req.Portrait)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "champion not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, presentChampion(champion))
}

func (h *Handler) handleOwnership(c echo.Context) error {
	ctx := c.Request().Context()
	sess := currentSession(c)
	return c.JSON(http.StatusOK, echo.Map{
		"owned": sess.Ledger.IsOwner(ctx, c.Param("id")),
	})
}

type portraitUploadRequest struct {
	// ImageData is base64, with or without a data-URL header.
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
}

func (h *Handler) handlePortraitUpload(c echo.Context) error {
	ctx := c.Request().Context()

	var req portraitUploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.ImageData == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imageData is required"})
	}

	payload := req.ImageData
	mimeType := req.MimeType
	if idx := strings.Index(payload, ","); idx >= 0 {
		header := payload[:idx]
		payload = payload[idx+1:]
		if mimeType == "" {
			if start := strings.Index(header, ":"); start >= 0 {
				if end := strings.Index(header, ";"); end > start {
					mimeType = header[start+1 : end]
				}
			}
		}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image data"})
	}

	url, err := h.blobs.Upload(ctx, data, req.FileName, mimeType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

func (h *Handler) handleEvents(c echo.Context) error {
	if h.signal == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "events not available"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Read pump: the client sends nothing we care about, but reading is what
	// surfaces a dropped connection between published events.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := h.signal.Subscribe(ctx)
	ping := time.NewTicker(eventPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(event); err != nil {
				slog.Debug("event feed client gone", "error", err)
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				slog.Debug("event feed client gone", "error", err)
				return nil
			}
		}
	}
}

// guardedError maps guarded-action failures: a credential mismatch is a
// retryable 403, never a mutation.
func (h *Handler) guardedError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrCredentialMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "credentials do not match", "retryable": true})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "champion not found"})
	case errors.Is(err, domain.ValidationError{}):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}
