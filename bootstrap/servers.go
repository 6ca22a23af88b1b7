package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"news-crawler/config"
	"news-crawler/rest"
	appOtel "news-crawler/utils/otel"
)

// newHTTPServer builds the REST server with its middleware chain.
func newHTTPServer(handler *rest.Handler, cfg *config.HTTPConfig, otelCfg appOtel.Config) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
	}

	handler.Register(e)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
