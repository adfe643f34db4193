// Package debugserver 以只读 HTTP 接口暴露模拟的最新快照
//
// 服务器运行在自己的 goroutine 上，只通过 Source.Snapshot 读取状态，
// 从不直接接触 ECS 世界。
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/gonewx/platformer/pkg/scenes"
)

// Source 提供最新快照，必须可以被并发调用
type Source interface {
	Snapshot() scenes.Snapshot
}

// SourceFunc 将普通函数适配为 Source
type SourceFunc func() scenes.Snapshot

// Snapshot 实现 Source 接口
func (f SourceFunc) Snapshot() scenes.Snapshot {
	return f()
}

// Server 调试 HTTP 服务器
type Server struct {
	src    Source
	router *mux.Router
}

// New 创建服务器并注册路由
//
//	GET /healthz            存活检查
//	GET /state              完整快照
//	GET /state/player       玩家状态
//	GET /state/hud          分数和生命
//	GET /state/traps        所有陷阱
//	GET /state/traps/{id}   单个陷阱（按实体ID）
func New(src Source) *Server {
	s := &Server{src: src, router: mux.NewRouter()}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/state/player", s.handlePlayer).Methods(http.MethodGet)
	s.router.HandleFunc("/state/hud", s.handleHUD).Methods(http.MethodGet)
	s.router.HandleFunc("/state/traps", s.handleTraps).Methods(http.MethodGet)
	s.router.HandleFunc("/state/traps/{id:[0-9]+}", s.handleTrap).Methods(http.MethodGet)

	return s
}

// Handler 返回 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe 在 addr 上提供服务，ctx 取消时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[DebugServer] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("debug server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("debug server shutdown failed: %w", err)
		}
		log.Printf("[DebugServer] Stopped")
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Snapshot())
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Snapshot().Player)
}

func (s *Server) handleHUD(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Snapshot().State)
}

func (s *Server) handleTraps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Snapshot().Traps)
}

func (s *Server) handleTrap(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trap id"})
		return
	}
	for _, trap := range s.src.Snapshot().Traps {
		if uint64(trap.ID) == id {
			writeJSON(w, http.StatusOK, trap)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("trap %d not found", id)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[DebugServer] Failed to encode response: %v", err)
	}
}
