package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/prochap/qrgen/internal/api"
	"github.com/prochap/qrgen/internal/config"
	"github.com/prochap/qrgen/internal/jobs"
	"github.com/prochap/qrgen/internal/qr"
	"github.com/prochap/qrgen/internal/service"
	"github.com/prochap/qrgen/internal/storage/sqlite"
	"github.com/prochap/qrgen/pkg/logging"
	"github.com/prochap/qrgen/web"
)

// Version is set at build time through ldflags.
var Version = "v0.1.0"

func main() {
	cmd := &cli.Command{
		Name:    "qrgen",
		Usage:   "Generador local de códigos QR PROCHAP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "ruta del archivo de configuración",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "puerto HTTP (anula la configuración)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "ruta de la base de datos (anula la configuración)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if port := cmd.String("port"); port != "" {
		cfg.Server.Port = port
	}
	if db := cmd.String("db"); db != "" {
		cfg.Database.Path = db
	}

	logging.SetupWithLevel(logging.ParseLevel(cfg.Log.Level))

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	svc := service.NewRecords(store, qr.NewRenderer(cfg.QR.DisplaySize, cfg.QR.PrintSize))
	handler := api.NewHandler(svc, jobs.NewRunner())
	router := api.NewRouter(handler, cfg.Server.Mode, web.FS())

	addr := ":" + cfg.Server.Port
	slog.Info("Server starting", "address", addr, "url", "http://localhost"+addr)
	if err := router.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		return err
	}
	return nil
}
