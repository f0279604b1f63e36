// Package dashboard serves the task page and turns form posts into view
// actions. Every action answers with a redirect to the page.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"taskdeck/app/view"
	"taskdeck/domain/task"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	sessionName  = "taskdeck"
	sessionIDKey = "sid"
	// settledKey marks the page load that follows an action redirect.
	settledKey = "settled"

	viewKey    = "taskdeck.view"
	sessionKey = "taskdeck.session"
)

type Handler struct {
	registry *view.Registry
	store    sessions.Store
}

func NewHandler(registry *view.Registry, store sessions.Store) *Handler {
	return &Handler{registry: registry, store: store}
}

// NewCookieStore returns the session store used to tie a browser to its view.
func NewCookieStore(secret []byte, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// WithView resolves the session's view and stores it on the echo context.
func (h *Handler) WithView(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		// A cookie that fails to decode yields a fresh session.
		sess, err := h.store.Get(req, sessionName)
		if sess == nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load session").SetInternal(err)
		}
		if err != nil {
			log.WithError(err).Debug("discarding unreadable session cookie")
		}

		id, _ := sess.Values[sessionIDKey].(string)
		if id == "" {
			id = h.registry.NewSessionID()
			sess.Values[sessionIDKey] = id
			if err := sess.Save(req, c.Response()); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to save session").SetInternal(err)
			}
		}

		c.Set(sessionKey, sess)
		c.Set(viewKey, h.registry.Get(id))
		return next(c)
	}
}

func currentView(c echo.Context) *view.View {
	return c.Get(viewKey).(*view.View)
}

// actionContext detaches the backend call from the inbound request: a
// request, once sent, is not aborted by the browser going away.
func actionContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

// backToPage redirects to the page. The load that follows renders the state
// the action left behind instead of refreshing again.
func backToPage(c echo.Context) error {
	sess := c.Get(sessionKey).(*sessions.Session)
	sess.Values[settledKey] = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.WithError(err).Warn("failed to mark action redirect")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// afterAction reports whether this load follows an action redirect and
// clears the mark.
func afterAction(c echo.Context) bool {
	sess := c.Get(sessionKey).(*sessions.Session)
	settled, _ := sess.Values[settledKey].(bool)
	if !settled {
		return false
	}
	delete(sess.Values, settledKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.WithError(err).Warn("failed to clear action redirect mark")
	}
	return true
}

func taskID(c echo.Context) string {
	raw := c.Param("id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func (h *Handler) Index(c echo.Context) error {
	v := currentView(c)

	if !afterAction(c) {
		_ = v.Refresh(actionContext(c), "")
	}

	page := NewPage(v.Snapshot(), v.DrainNotifications())

	var buf bytes.Buffer
	if err := Render(&buf, page); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render page").SetInternal(err)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *Handler) Search(c echo.Context) error {
	_ = currentView(c).Search(actionContext(c), c.QueryParam("q"))
	return backToPage(c)
}

func (h *Handler) OpenCreate(c echo.Context) error {
	currentView(c).OpenCreateDialog()
	return backToPage(c)
}

func (h *Handler) CancelCreate(c echo.Context) error {
	currentView(c).CloseCreateDialog()
	return backToPage(c)
}

func (h *Handler) Create(c echo.Context) error {
	nt := task.NewTask{
		Name:    c.FormValue("name"),
		Owner:   c.FormValue("owner"),
		Command: c.FormValue("command"),
	}

	err := currentView(c).SubmitCreate(actionContext(c), nt)
	if errors.Is(err, view.ErrSubmitInFlight) {
		log.Debug("ignoring duplicate create submission")
	}
	return backToPage(c)
}

func (h *Handler) RequestDelete(c echo.Context) error {
	currentView(c).RequestDelete(taskID(c))
	return backToPage(c)
}

func (h *Handler) Delete(c echo.Context) error {
	v := currentView(c)
	if c.FormValue("confirm") != "yes" {
		v.CancelDelete()
		return backToPage(c)
	}

	if err := v.ConfirmDelete(actionContext(c), taskID(c)); errors.Is(err, view.ErrDeleteNotConfirmed) {
		log.WithField("task_id", taskID(c)).Debug("delete without a pending confirmation ignored")
	}
	return backToPage(c)
}

func (h *Handler) Run(c echo.Context) error {
	_ = currentView(c).RunExecution(actionContext(c), taskID(c))
	return backToPage(c)
}

func (h *Handler) CloseOutput(c echo.Context) error {
	currentView(c).CloseOutput()
	return backToPage(c)
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Index, h.WithView)
	g.GET("/search", h.Search, h.WithView)
	g.POST("/dialog/create", h.OpenCreate, h.WithView)
	g.POST("/dialog/create/cancel", h.CancelCreate, h.WithView)
	g.POST("/tasks", h.Create, h.WithView)
	g.POST("/tasks/:id/delete/request", h.RequestDelete, h.WithView)
	g.POST("/tasks/:id/delete", h.Delete, h.WithView)
	g.POST("/tasks/:id/run", h.Run, h.WithView)
	g.POST("/output/close", h.CloseOutput, h.WithView)
}
