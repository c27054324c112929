package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	catalogx "pieline/agent/catalog"
	enginex "pieline/agent/engine"
	statex "pieline/agent/state"
	driverx "pieline/driver"
	"pieline/fulfillment"
	configx "pieline/pkg/config"
	_ "pieline/pkg/logger/autoload"
	openrouterx "pieline/pkg/openrouter"
	serverx "pieline/server"
)

type AppConfig struct {
	// Mode selects the run mode: "serve" exposes the driver boundary over
	// HTTP; "chat" runs an interactive conversation on stdin/stdout.
	Mode string `envconfig:"MODE" default:"serve"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	gatewayCfg := configx.MustNew[fulfillment.GatewayConfig]("FULFILLMENT")
	gateway, err := fulfillment.NewHTTPGateway(*gatewayCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize fulfillment gateway")
	}

	agents, err := catalogx.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("build agent catalogue")
	}

	engine, err := enginex.New(statex.NewMemoryStore(), agents, gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("build dispatch engine")
	}

	switch appCfg.Mode {
	case "chat":
		runChat(engine)
	default:
		runServe(engine)
	}
}

func runServe(engine *enginex.Engine) {
	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(engine)

	log.Info().Str("addr", serverCfg.Addr).Msg("listening")
	if err := http.ListenAndServe(serverCfg.Addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func runChat(engine *enginex.Engine) {
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	client := openrouterx.NewClient(*openRouterCfg)
	if client == nil {
		log.Fatal().Msg("chat mode requires OPENROUTER_API_KEY")
	}

	d, err := driverx.New(engine, client, openRouterCfg.Model, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("build conversation driver")
	}
	if err := d.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("conversation ended with error")
	}
}
