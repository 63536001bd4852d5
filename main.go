package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"duelarena/character"
	"duelarena/config"
	"duelarena/server"
)

// DuelArena 入口：加载配置与角色，启动 HTTP + WebSocket 服务并托管对局
func main() {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "arena.ini", "arena config file (ini); empty for defaults")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides [server] addr")
	flag.Parse()

	if err := run(cfgPath, addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return err
	}
	defer server.SyncLogger()

	var chars [2]*character.Data
	for i := range chars {
		if chars[i], err = cfg.LoadCharacter(i); err != nil {
			return err
		}
		server.Log.Infow("character loaded", "seat", i+1, "id", chars[i].ID, "name", chars[i].Name)
	}

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mm := server.NewMatchManager(ctx, cfg, chars)
	// 先预创建一个默认对局，便于快速试跑
	if _, err := mm.GetOrCreate(server.DefaultMatchID); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", mm.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/matches", mm.HandleMatches)
	mux.HandleFunc("/admin/config", mm.HandleAdminConfig)
	mux.HandleFunc("/metrics", mm.HandleMetrics)
	mux.HandleFunc("/snapshot", mm.HandleSnapshot)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server.Log.Infof("DuelArena listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		server.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
