// Package api exposes HITS computations over the loaded link graph through
// HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lioia/topic-hits/pkg/node"
	"github.com/lioia/topic-hits/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

type Server struct {
	Node *node.Node
}

// New returns the echo instance serving n
func New(n *node.Node) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			utils.ServerLog("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s := &Server{Node: n}
	e.GET("/health", s.Health)
	e.GET("/pages/:id", s.GetPage)
	e.POST("/hits", s.PostHits)
	return e
}

// Serve until ctx is done, then shut down gracefully
func Serve(ctx context.Context, e *echo.Echo, address string) error {
	errs := make(chan error, 1)
	go func() {
		utils.ServerLog("Starting api server", "address", address)
		errs <- e.Start(address)
	}()
	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type pageResponse struct {
	ID        string `json:"id"`
	OutDegree int    `json:"outdegree"`
	InDegree  int    `json:"indegree"`
}

func (s *Server) GetPage(c echo.Context) error {
	id := c.Param("id")
	return c.JSON(http.StatusOK, pageResponse{
		ID:        id,
		OutDegree: s.Node.Graph.OutDegree(id),
		InDegree:  s.Node.Graph.InDegree(id),
	})
}

type hitsRequest struct {
	Query string   `json:"query"`
	Root  []string `json:"root" validate:"omitempty,dive,required"`
	Base  []string `json:"base" validate:"omitempty,dive,required"`
	TopK  int      `json:"top_k" validate:"gte=0"`
}

type hitsResponse struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Iterations int    `json:"iterations"`
	Authority  any    `json:"authority"`
	Hub        any    `json:"hub"`
}

func (s *Server) PostHits(c echo.Context) error {
	req := new(hitsRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	id, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	result, err := s.Node.Compute(c.Request().Context(), node.Job{
		ID:    id,
		Query: req.Query,
		Root:  req.Root,
		Base:  req.Base,
		TopK:  req.TopK,
	})
	if errors.Is(err, node.ErrNoRootSet) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		utils.ErrorLog("api", "Computation failed", "job", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, hitsResponse{
		ID:         result.ID,
		State:      result.State,
		Iterations: result.Iterations,
		Authority:  result.Authority,
		Hub:        result.Hub,
	})
}
