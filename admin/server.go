// Package admin 提供宿主进程的管理端 HTTP 接口。
//
//   - GET  /metrics        Prometheus 拉取
//   - GET  /debug/devices  各设备类别尚未 flush 的值，不消耗增量
//   - POST /flush          立即输出一条快照（受限流）
package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/sink"
	"github.com/ceyewan/devmetrics/trace"
	"github.com/ceyewan/devmetrics/xerrors"
)

// Previewer 可预览的设备类别，*registry.Registry 满足该接口
type Previewer interface {
	Class() string
	Preview() []metrics.Section
}

// Flusher 按需 flush，*sink.Flusher 满足该接口
type Flusher interface {
	Trigger() (bool, error)
}

// Server 管理端 HTTP 服务
type Server struct {
	cfg        *Config
	engine     *gin.Engine
	logger     clog.Logger
	previewers []Previewer
	flusher    Flusher

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// New 创建管理端服务，cfg 为 nil 时使用默认配置
func New(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := &options{logger: clog.Discard()}
	for _, o := range opts {
		o(opt)
	}
	if opt.registry == nil {
		opt.registry = prometheus.NewRegistry()
	}

	reqMetrics, err := newRequestMetrics(opt.registry)
	if err != nil {
		return nil, xerrors.Wrap(err, "register admin request metrics")
	}

	s := &Server{
		cfg:        cfg,
		logger:     opt.logger,
		previewers: opt.previewers,
		flusher:    opt.flusher,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Tracing {
		engine.Use(trace.GinMiddleware(cfg.ServiceName))
	}
	engine.Use(reqMetrics.observe(), accessLog(s.logger))

	engine.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(opt.registry, promhttp.HandlerOpts{})))
	engine.GET("/debug/devices", s.handleDevices)
	if s.flusher != nil {
		engine.POST("/flush", s.handleFlush)
	}
	s.engine = engine
	return s, nil
}

// Handler 返回 HTTP 处理器，主要用于测试
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 监听 Config.Addr 并在后台提供服务
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return xerrors.New("admin: server already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return xerrors.Wrapf(err, "listen %s", s.cfg.Addr)
	}
	s.listener = ln
	s.srv = &http.Server{Handler: s.engine}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin server stopped", clog.Error(err))
		}
	}(s.srv)

	s.logger.Info("admin server listening", clog.String("addr", ln.Addr().String()))
	return nil
}

// Addr 返回实际监听地址，未启动时返回配置的地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type sectionView struct {
	Name   string            `json:"name"`
	Values map[string]uint64 `json:"values"`
}

type classView struct {
	Class    string        `json:"class"`
	Sections []sectionView `json:"sections"`
}

func (s *Server) handleDevices(c *gin.Context) {
	views := make([]classView, 0, len(s.previewers))
	for _, p := range s.previewers {
		sections := p.Preview()
		view := classView{Class: p.Class(), Sections: make([]sectionView, 0, len(sections))}
		for _, sec := range sections {
			values := make(map[string]uint64, len(sec.Values))
			for _, v := range sec.Values {
				values[v.Name] = v.Value
			}
			view.Sections = append(view.Sections, sectionView{Name: sec.Name, Values: values})
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"classes": views})
}

func (s *Server) handleFlush(c *gin.Context) {
	ok, err := s.flusher.Trigger()
	switch {
	case errors.Is(err, sink.ErrThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case err != nil:
		code := xerrors.GetCode(err)
		s.logger.ErrorContext(c.Request.Context(), "flush via admin failed", clog.ErrorWithCode(err, code))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": code})
	case !ok:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sink not initialized"})
	default:
		c.JSON(http.StatusOK, gin.H{"flushed": true})
	}
}
