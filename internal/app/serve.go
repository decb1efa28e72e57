package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/api"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/api/middleware"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router builds the HTTP API over the app's record store.
func (a *App) Router(verify middleware.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h := handlers.NewRecordsHandler(a.deps.Store, a.deps.Events, a.deps.Now, a.log)
	api.RegisterRoutes(r, h, verify, a.log)
	return r
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	var verify middleware.TokenVerifier
	if issuer := a.cfg.Server.OIDCIssuerURL; issuer != "" {
		v, err := middleware.NewOIDCVerifier(ctx, issuer)
		if err != nil {
			return fmt.Errorf("%w: failed to initialize OIDC verifier: %v", apperr.ErrConfiguration, err)
		}
		verify = v
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.Router(verify),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
