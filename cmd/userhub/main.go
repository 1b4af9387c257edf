package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avlasov/userhub/internal/common/bootstrap"
	commonhttp "github.com/avlasov/userhub/internal/common/http"
	srv "github.com/avlasov/userhub/internal/common/server"
	userhttp "github.com/avlasov/userhub/internal/user/http"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to bootstrap: %v\n", err))
		os.Exit(1)
	}
	handler := userhttp.NewHandler(app.UserService, app.Config.RequestTimeout, app.Log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler(app.Log, mux)

	rateLimitMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			rateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
		})
	}

	finalHandler := rateLimitMiddleware(baseHandler)

	serverConfig := srv.DefaultServerConfig(app.Config.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			app.Log.Infof("userhub service: closing database pool")
			app.Pool.Close()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, app.Log, "userhub", shutdownHooks)
}
