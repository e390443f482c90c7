package main

import (
	"log"

	"stockroom/internal/client"
	"stockroom/internal/config"
	"stockroom/internal/http/handlers"
	applog "stockroom/internal/log"
)

func main() {
	applog.SetService("stockroom-dashboard")
	cfg := config.Load()

	if f := applog.Setup(cfg.LogFile); f != nil {
		defer f.Close()
	}

	api := client.New(cfg.APIBaseURL, cfg.APIToken)
	app := handlers.NewDashboardApp(cfg, api, "./web/templates")

	log.Printf("[http] dashboard on :%s (api %s)", cfg.DashboardPort, cfg.APIBaseURL)
	if err := app.Listen(":" + cfg.DashboardPort); err != nil {
		log.Printf("[http] %v", err)
	}
}
