package main

import (
	"log"
	"net/http"
	"os"

	"github.com/unischedule/dashboard/internal/adapters/rest"
	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/services"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "schedctl: ", 0)

	cfg, err := config.LoadCLIConfig()
	errAndDie(err)

	creds := rest.StaticToken(cfg.API.Token)
	if cfg.API.Anonymous {
		creds = rest.Anonymous()
	}
	client, err := rest.NewClient(cfg.API.BaseURL, creds, rest.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
	errAndDie(err)

	cli := newCommandLine(client, services.Options{
		Validator: services.NewValidator(),
		Keyword:   cfg.ConfirmKeyword,
	})
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("error: %s", services.UserMessage(err))
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
