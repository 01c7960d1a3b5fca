package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/you/arb-scanner/internal/dash"
)

// Handler — /ws, а при store != nil ещё дашборд на / и /api/dash
func Handler(h *Hub, store *dash.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)
	if store != nil {
		dash.Register(mux, store)
	}
	return dash.WithCORS(mux)
}

func Serve(ctx context.Context, addr string, h *Hub, store *dash.Store, log *zap.Logger) {
	if addr == "" {
		log.Info("feed disabled: empty addr")
		return
	}
	go h.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(h, store),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("feed server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("feed server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
