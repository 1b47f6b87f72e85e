package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ninja0404/dex-reputation/internal/pipeline"
	"github.com/ninja0404/dex-reputation/pkg/logger"
)

// StatusSource 健康接口的数据来源，由评分管道实现
type StatusSource interface {
	IsReady() bool
	GetStats() pipeline.StatsSnapshot
}

// Server 健康检查HTTP服务
type Server struct {
	addr   string
	status StatusSource
	srv    *http.Server
}

// NewServer 创建健康检查服务
func NewServer(addr string, status StatusSource) *Server {
	return &Server{
		addr:   addr,
		status: status,
	}
}

// Start 启动健康检查服务，监听失败视为致命错误由调用方处理
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)

	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 等一个调度周期捕获端口占用这类立即失败
	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
	}

	logger.Info("🩺 健康检查服务已启动", logger.String("addr", s.addr))
	return nil
}

// Stop 优雅停止健康检查服务
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("健康检查服务已停止")
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "dex-reputation",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.status.IsReady()

	code := http.StatusOK
	state := "healthy"
	if !ready {
		code = http.StatusServiceUnavailable
		state = "not_ready"
	}

	writeJSON(w, code, map[string]interface{}{
		"status": state,
		"ready":  ready,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.GetStats())
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("写入健康检查响应失败", logger.FieldErr(err))
	}
}
