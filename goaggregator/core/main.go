package main

import (
	"log"
	"os"

	"github.com/urfave/cli"

	"PhoenixAggregator/goaggregator/core/logger"
	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/store"
	"PhoenixAggregator/goaggregator/core/web"
)

func main() {
	app := cli.NewApp()
	app.Name = "phoenix-aggregator"
	app.Usage = "prepaid round-based DTO price aggregator"
	app.Commands = []cli.Command{
		{
			Name:    "node",
			Aliases: []string{"n"},
			Usage:   "run the aggregator node",
			Action:  runNode,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runNode(*cli.Context) error {
	config := store.NewConfig()
	logger.SetLoggerDir(config.RootDir)
	app := services.NewApplication(config)

	services.Authenticate(app.Store)
	r := web.Router(app)
	if err := app.Start(); err != nil {
		return err
	}
	defer app.Stop()

	logger.Fatal(r.Run(":" + app.Store.Config.Port))
	return nil
}
