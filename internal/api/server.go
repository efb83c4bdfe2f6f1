package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mintwatch/internal/chain"
	"mintwatch/internal/classifier"
	"mintwatch/internal/countdown"
	"mintwatch/internal/domain"
	"mintwatch/internal/log"
	"mintwatch/internal/metrics"
	"mintwatch/internal/redis"
	"mintwatch/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	echo      *echo.Echo
	repo      storage.TransitionRepository
	redis     *redis.Client
	templates *template.Template
	sse       *SSEBroker
	display   classifier.Display
	tick      time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

type SSEBroker struct {
	clients map[chan string]bool
	mu      sync.RWMutex
}

func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan string]bool)}
}

func (b *SSEBroker) Subscribe() chan string {
	ch := make(chan string, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *SSEBroker) Unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	close(ch)
	b.mu.Unlock()
}

// Broadcast drops the message for subscribers whose buffer is full.
func (b *SSEBroker) Broadcast(msg string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// LaunchView is one launch as rendered on the page.
type LaunchView struct {
	Name      string
	Phase     string
	Header    classifier.Header
	HasHeader bool
	Countdown string
	Completed bool
	Pending   bool
}

func NewServer(repo storage.TransitionRepository, rdb *redis.Client, display classifier.Display) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger := log.WithComponent("api")

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		echo:      e,
		repo:      repo,
		redis:     rdb,
		templates: tmpl,
		sse:       NewSSEBroker(),
		display:   display,
		tick:      time.Second,
		now:       time.Now,
		logger:    logger,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/api/events", s.events)

	s.echo.POST("/api/classify", s.classify)
	s.echo.GET("/api/transitions", s.getTransitions)
	s.echo.GET("/api/transitions/:id", s.getTransition)

	// Launch management
	s.echo.GET("/api/launches", s.getLaunches)
	s.echo.POST("/api/launches", s.addLaunch)
	s.echo.DELETE("/api/launches/:name", s.removeLaunch)
	s.echo.GET("/api/launches/:name/phase", s.getPhase)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) Broadcast(msg string) {
	s.sse.Broadcast(msg)
}

func (s *Server) index(c echo.Context) error {
	data := map[string]any{}
	status := http.StatusOK

	views, err := s.launchViews(c)
	if err != nil {
		s.logger.Error().Err(err).Msg("load launches")
		data["Error"] = "Launch state unavailable."
		status = http.StatusServiceUnavailable
	}
	data["Launches"] = views

	transitions, err := s.repo.FindAll(c.Request().Context(), 20, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("load transitions")
	}
	data["Transitions"] = transitions

	c.Response().Status = status
	return s.render(c, "index.html", data)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// launchViews classifies every tracked launch's cached snapshot at the
// current instant.
func (s *Server) launchViews(c echo.Context) ([]LaunchView, error) {
	ctx := c.Request().Context()

	launches, err := s.redis.GetLaunches(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(launches, func(i, j int) bool { return launches[i].Name < launches[j].Name })

	now := s.now()
	views := make([]LaunchView, 0, len(launches))
	for _, l := range launches {
		snap, err := s.redis.GetSnapshot(ctx, l.Name)
		if err != nil {
			return nil, err
		}
		views = append(views, s.viewFor(l.Name, snap, now))
	}
	return views, nil
}

func (s *Server) viewFor(name string, snap *domain.Snapshot, now time.Time) LaunchView {
	if snap == nil {
		return LaunchView{Name: name, Pending: true}
	}

	p := classifier.ClassifySnapshot(snap, now)
	v := LaunchView{Name: name, Phase: p.String()}
	v.Header, v.HasHeader = classifier.HeaderFor(p, snap.FairLaunch, snap.CandyMachine, s.display)
	if v.HasHeader {
		d := countdown.Compute(v.Header.Date, v.Header.Status, now)
		v.Countdown, v.Completed = d.String(), d.Completed
	}
	return v
}

type phaseResponse struct {
	Launch    string             `json:"launch,omitempty"`
	Phase     domain.Phase       `json:"phase"`
	Header    *classifier.Header `json:"header,omitempty"`
	Countdown *countdown.Display `json:"countdown,omitempty"`
	FetchedAt *time.Time         `json:"fetched_at,omitempty"`
}

func (s *Server) phaseFor(fl *domain.FairLaunchState, cm *domain.CandyMachineState, now time.Time) phaseResponse {
	resp := phaseResponse{Phase: classifier.Classify(fl, cm, now)}
	if h, ok := classifier.HeaderFor(resp.Phase, fl, cm, s.display); ok {
		d := countdown.Compute(h.Date, h.Status, now)
		resp.Header, resp.Countdown = &h, &d
	}
	return resp
}

// classifyRequest takes accounts in the indexer's format: unix seconds for
// timestamps and lottery_duration.
type classifyRequest struct {
	FairLaunch   *chain.FairLaunchAccount   `json:"fair_launch"`
	CandyMachine *chain.CandyMachineAccount `json:"candy_machine"`
	Now          *int64                     `json:"now"`
}

func (s *Server) classify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}

	var (
		fl  *domain.FairLaunchState
		cm  *domain.CandyMachineState
		err error
	)
	if req.FairLaunch != nil {
		if fl, err = req.FairLaunch.State(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	if req.CandyMachine != nil {
		cm = req.CandyMachine.State()
	}

	now := s.now()
	if req.Now != nil {
		now = time.Unix(*req.Now, 0).UTC()
	}

	return c.JSON(http.StatusOK, s.phaseFor(fl, cm, now))
}

func (s *Server) getPhase(c echo.Context) error {
	name := c.Param("name")
	ctx := c.Request().Context()

	exists, err := s.redis.LaunchExists(ctx, name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}

	snap, err := s.redis.GetSnapshot(ctx, name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no snapshot yet"})
	}

	resp := s.phaseFor(snap.FairLaunch, snap.CandyMachine, s.now())
	resp.Launch = name
	resp.FetchedAt = &snap.FetchedAt
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getTransitions(c echo.Context) error {
	ctx := c.Request().Context()
	limit := queryInt(c, "limit", 50)

	var (
		transitions []domain.Transition
		err         error
	)
	if launch := c.QueryParam("launch"); launch != "" {
		transitions, err = s.repo.FindByLaunch(ctx, launch, limit)
	} else {
		transitions, err = s.repo.FindAll(ctx, limit, queryInt(c, "offset", 0))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if transitions == nil {
		transitions = []domain.Transition{}
	}
	return c.JSON(http.StatusOK, transitions)
}

func (s *Server) getTransition(c echo.Context) error {
	id := c.Param("id")
	t, err := s.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) getLaunches(c echo.Context) error {
	views, err := s.launchViews(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return s.render(c, "launches", views)
}

func (s *Server) addLaunch(c echo.Context) error {
	ctx := c.Request().Context()
	launch := domain.Launch{
		Name:           strings.TrimSpace(c.FormValue("name")),
		FairLaunchID:   strings.TrimSpace(c.FormValue("fair_launch")),
		CandyMachineID: strings.TrimSpace(c.FormValue("candy_machine")),
	}

	if launch.Name == "" {
		return c.HTML(http.StatusBadRequest, `<div class="error">Name required</div>`)
	}
	if launch.FairLaunchID == "" && launch.CandyMachineID == "" {
		return c.HTML(http.StatusBadRequest, `<div class="error">Fair launch or candy machine required</div>`)
	}

	exists, _ := s.redis.LaunchExists(ctx, launch.Name)
	if exists {
		return c.HTML(http.StatusConflict, `<div class="error">Already tracking</div>`)
	}

	if err := s.redis.AddLaunch(ctx, launch); err != nil {
		return c.HTML(http.StatusInternalServerError, `<div class="error">Failed to add</div>`)
	}

	s.logger.Info().Str("launch", launch.Name).Msg("launch added")
	return s.getLaunches(c)
}

func (s *Server) removeLaunch(c echo.Context) error {
	name := c.Param("name")

	if err := s.redis.RemoveLaunch(c.Request().Context(), name); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	metrics.ForgetLaunch(name)

	s.logger.Info().Str("launch", name).Msg("launch removed")
	return s.getLaunches(c)
}

// events streams a "tick" event with freshly classified launch headers every
// tick and a "transition" event for every broadcast transition.
func (s *Server) events(c echo.Context) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	ch := s.sse.Subscribe()
	defer s.sse.Unsubscribe(ch)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	fmt.Fprintf(c.Response(), ": ping\n\n")
	c.Response().Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case msg := <-ch:
			writeEvent(c, "transition", msg)
		case <-ticker.C:
			views, err := s.launchViews(c)
			if err != nil {
				s.logger.Warn().Err(err).Msg("sse tick")
				continue
			}
			var buf bytes.Buffer
			if err := s.templates.ExecuteTemplate(&buf, "launches", views); err != nil {
				s.logger.Error().Err(err).Msg("render launches")
				continue
			}
			writeEvent(c, "tick", buf.String())
		}
	}
}

func writeEvent(c echo.Context, event, msg string) {
	fmt.Fprintf(c.Response(), "event: %s\n", event)
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(c.Response(), "data: %s\n", line)
	}
	fmt.Fprintf(c.Response(), "\n")
	c.Response().Flush()
}

func (s *Server) render(c echo.Context, name string, data any) error {
	c.Response().Header().Set("Content-Type", "text/html")
	err := s.templates.ExecuteTemplate(c.Response(), name, data)
	if err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("render")
	}
	return err
}

func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
