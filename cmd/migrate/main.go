// migrate aplica o revierte el esquema PostgreSQL del libro de lotes.
//
// Uso: go run ./cmd/migrate [-database-url URL] up|down|version
// Sin -database-url se usa DATABASE_URL o las variables DB_* de la configuración.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/lot-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/lot-ledger/pkg/config"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

func main() {
	var databaseURL, logLevel string
	flag.StringVar(&databaseURL, "database-url", "", "connection string de PostgreSQL (por defecto la de la configuración)")
	flag.StringVar(&logLevel, "log-level", "info", "nivel de log (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: logLevel}).Named("migrate")

	if databaseURL == "" {
		databaseURL = cfg.DB.ConnectionString()
	}
	m, err := postgres.NewMigrator(databaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = m.Version()
		if err == nil {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("versión del esquema")
		}
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("migración fallida")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "uso: migrate [-database-url URL] [-log-level nivel] up|down|version")
}
