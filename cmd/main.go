package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradejournal/src/auth"
	"tradejournal/src/database"
	"tradejournal/src/enrich"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Trade Journal CMD"
	app.Usage = "The trade journal command line interface"

	app.Commands = []cli.Command{
		serveCMD,
		seedCMD,
		enrichCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the HTTP API",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the journal HTTP API`,
	}
	seedCMD = cli.Command{
		Name:        "seed",
		Usage:       "seed a demo user and sample trades",
		Action:      seedAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Seed a demo user with an API key and a few sample trades`,
	}
	enrichCMD = cli.Command{
		Name:        "enrich",
		Usage:       "enrich a ticker",
		Action:      enrichAction,
		ArgsUsage:   "<ticker>",
		Flags:       []cli.Flag{},
		Description: `Fetch a market snapshot for a ticker and print it`,
	}
)

func serveAction(_ *cli.Context) error {

	logrus.Info("Starting serve CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	server.StartServer(server.GetConfig().Port)
	return nil
}

func seedAction(_ *cli.Context) error {

	logrus.Info("Starting seed CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	secret := uuid.NewString()
	hash, err := auth.HashSecret(secret)
	if err != nil {
		logrus.WithError(err).Error("Hashing API key secret")
		return err
	}

	user := &model.User{
		Email:      "demo@tradejournal.local",
		APIKeyID:   uuid.NewString(),
		APIKeyHash: hash,
	}
	ctx := context.Background()
	if err := repository.NewUserRepository().Create(ctx, user); err != nil {
		logrus.WithError(err).Error("Creating demo user")
		return err
	}

	svc := journal.NewService(repository.NewTradeRepository(), repository.NewTagRepository())

	samples := []journal.CreateTradeInput{
		{
			Symbol:     "AAPL",
			Side:       model.SideLong,
			Quantity:   decimal.NewFromInt(100),
			EntryPrice: decimal.RequireFromString("175.50"),
			ExitPrice:  decimal.RequireFromString("178.25"),
			Setup:      "Gap and go over premarket high",
			TagNames:   []string{"gap-up", "momentum"},
		},
		{
			Symbol:     "TSLA",
			Side:       model.SideShort,
			Quantity:   decimal.NewFromInt(50),
			EntryPrice: decimal.RequireFromString("242.00"),
			ExitPrice:  decimal.RequireFromString("238.40"),
			Setup:      "Failed breakout fade at resistance",
			TagNames:   []string{"fade"},
		},
		{
			Symbol:     "SPY",
			Side:       model.SideLong,
			Quantity:   decimal.NewFromInt(20),
			EntryPrice: decimal.RequireFromString("451.10"),
			ExitPrice:  decimal.RequireFromString("450.30"),
			Mistakes:   "Chased the entry after the move started",
			TagNames:   []string{"momentum"},
		},
	}

	for _, input := range samples {
		if _, err := svc.CreateTrade(ctx, user, input); err != nil {
			logrus.WithError(err).WithField("symbol", input.Symbol).Error("Seeding trade")
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"email":  user.Email,
		"trades": len(samples),
	}).Info("Seed complete")
	fmt.Printf("API token: %s.%s\n", user.APIKeyID, secret)

	return nil
}

func enrichAction(c *cli.Context) error {

	ticker := c.Args().First()
	if ticker == "" {
		return fmt.Errorf("usage: enrich <ticker>")
	}

	logrus.WithField("ticker", ticker).Info("Starting enrich CMD")

	snapshot, err := enrich.NewDefaultEnricher().Enrich(context.Background(), ticker)
	if err != nil {
		logrus.WithError(err).Error("Enriching ticker")
		return err
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}
