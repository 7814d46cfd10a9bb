package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/theimperious1/OCRAutoModerator/automod/configsync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

// registers collectors on the default registry, so only built once per process
var adminMetrics = echoprometheus.NewMiddleware("ocrmod")

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

type communityStatus struct {
	Community string    `json:"community"`
	Revision  string    `json:"revision"`
	LoadedAt  time.Time `json:"loaded_at"`
	Rules     int       `json:"rules"`
}

type checkResult struct {
	Valid bool          `json:"valid"`
	Error string        `json:"error,omitempty"`
	Rules []ruleSummary `json:"rules,omitempty"`
}

type revisionSummary struct {
	ID        uint      `json:"id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(s.logger))
	e.Use(middleware.Recover())
	e.Use(adminMetrics)
	e.Use(middleware.BodyLimit("1M"))
	e.HTTPErrorHandler = s.errorHandler

	e.GET("/_health", s.HandleHealthCheck)

	// admin auth header required, when a token is configured
	admin := e.Group("/admin", s.requireAdmin)
	admin.GET("/communities", s.HandleListCommunities)
	admin.POST("/check", s.HandleCheckRules)
	admin.POST("/reload/:community", s.HandleReload)
	admin.GET("/history/:community", s.HandleHistory)
	return e
}

func (s *Server) RunAdmin(listen string) error {
	e := s.newEcho()
	s.httpd = &http.Server{
		Handler:        e,
		Addr:           listen,
		WriteTimeout:   time.Minute,
		ReadTimeout:    time.Minute,
		MaxHeaderBytes: 1024 * 1024,
	}
	s.logger.Info("starting admin server", "bind", listen)
	if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.adminToken == "" {
			return next(c)
		}
		if c.Request().Header.Get("Authorization") != "Bearer "+s.adminToken {
			s.logger.Info("rejected admin request", "path", c.Path(), "remote", c.RealIP())
			return echo.NewHTTPError(http.StatusUnauthorized, "admin token required")
		}
		return next(c)
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		s.logger.Warn("ocrmod-http-internal-error", "err", err)
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, GenericStatus{Daemon: "ocrmod", Status: "error", Message: msg}); err != nil {
		s.logger.Error("failed to write error response", "err", err)
	}
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: "ocrmod"})
}

func (s *Server) HandleListCommunities(c echo.Context) error {
	table := s.engine.Snapshots
	out := []communityStatus{}
	for _, name := range table.Communities() {
		snap := table.Get(name)
		if snap == nil {
			continue
		}
		out = append(out, communityStatus{
			Community: snap.Community,
			Revision:  snap.Revision,
			LoadedAt:  snap.LoadedAt,
			Rules:     snap.Rules.Len(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Validates a rule document posted as the request body, without publishing it.
func (s *Server) HandleCheckRules(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}
	rs, err := configsync.Check(string(body))
	if err != nil {
		return c.JSON(http.StatusBadRequest, checkResult{Valid: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, checkResult{Valid: true, Rules: summarizeRules(rs)})
}

func (s *Server) HandleReload(c echo.Context) error {
	community := c.Param("community")
	snap, err := s.configs.Load(c.Request().Context(), community)
	if err != nil {
		var se *configsync.StoreError
		if errors.As(err, &se) {
			s.logger.Error("failed to reload community rules", "community", community, "err", err)
			return echo.NewHTTPError(http.StatusBadGateway, "could not read rule document")
		}
		return c.JSON(http.StatusBadRequest, checkResult{Valid: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, communityStatus{
		Community: snap.Community,
		Revision:  snap.Revision,
		LoadedAt:  snap.LoadedAt,
		Rules:     snap.Rules.Len(),
	})
}

func (s *Server) HandleHistory(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "revision history not configured")
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		limit = n
	}
	revs, err := s.history.History(c.Request().Context(), c.Param("community"), limit)
	if err != nil {
		return err
	}
	out := make([]revisionSummary, 0, len(revs))
	for _, r := range revs {
		out = append(out, revisionSummary{ID: r.ID, Reason: r.Reason, CreatedAt: r.CreatedAt, Content: r.Content})
	}
	return c.JSON(http.StatusOK, out)
}
