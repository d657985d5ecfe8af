// Package servecmder provides the serve command, which runs the HTTP API and
// MCP server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/restream/api"
	"github.com/papercomputeco/restream/api/worker"
	"github.com/papercomputeco/restream/cmd/restream/storeopen"
	"github.com/papercomputeco/restream/pkg/config"
	"github.com/papercomputeco/restream/pkg/eventstream"
	"github.com/papercomputeco/restream/pkg/eventstream/kafka"
	"github.com/papercomputeco/restream/pkg/eventstream/nop"
	"github.com/papercomputeco/restream/pkg/logger"
)

type serveCommander struct {
	listen       string
	repair       bool
	sqlitePath   string
	postgresDSN  string
	kafkaBrokers string
	kafkaTopic   string
	noMCP        bool
	logFile      string
	logJSON      bool

	debug  bool
	logger *slog.Logger
}

const serveLongDesc string = `Run the restream API server.

Endpoints:
  POST /v1/reconstruct          Reconstruct a transcript (raw body or {"transcript": "..."})
  GET  /v1/transcripts          List stored transcripts (?provider=, ?limit=)
  GET  /v1/transcripts/:hash    Get one stored transcript
  GET  /ping                    Health check
  *    /mcp                     MCP streamable HTTP endpoint (reconstruct_stream tool)

Every reconstruction is stored in the background, in memory unless --sqlite or
--postgres is set. With --kafka-brokers a restream.transcript.stored event is
published for each newly stored transcript.`

const serveShortDesc string = "Run the restream API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.configure(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddBoolFlag(cmd, config.Flags, config.FlagRepair, &cmder.repair)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.logJSON, "log-json", false, "Write JSON logs to stderr instead of pretty logs")

	return cmd
}

func (c *serveCommander) configure(cmd *cobra.Command) error {
	var err error
	c.debug, err = cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagListen,
		config.FlagRepair,
		config.FlagSQLite,
		config.FlagPostgres,
		config.FlagKafkaBrokers,
		config.FlagKafkaTopic,
	})

	c.listen = v.GetString("api.listen")
	c.repair = v.GetBool("parse.repair")
	c.sqlitePath = v.GetString("storage.sqlite_path")
	c.postgresDSN = v.GetString("storage.postgres_dsn")
	c.kafkaBrokers = v.GetString("eventstream.kafka_brokers")
	c.kafkaTopic = v.GetString("eventstream.kafka_topic")

	return nil
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	driver, err := storeopen.Open(ctx, storeopen.Options{
		PostgresDSN: c.postgresDSN,
		SQLitePath:  c.sqlitePath,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		Repair:     c.repair,
		Pool:       pool,
		MCP:        !c.noMCP,
	}, driver, c.logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating API server: %w", err)
	}

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case runErr = <-errChan:
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context done, shutting down")
	}

	if err := server.Shutdown(); err != nil {
		c.logger.Warn("API server shutdown failed", "error", err)
	}

	// Drain queued transcripts before the driver and publisher close.
	pool.Close()

	return runErr
}

// setupLogger builds the command logger. With --log-file, JSON logs are
// additionally written to the file.
func (c *serveCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(!c.logJSON),
		logger.WithJSON(c.logJSON),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(console, logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))

	return func() { f.Close() }, nil
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	brokers := config.SplitList(c.kafkaBrokers)
	if len(brokers) == 0 {
		return nop.NewPublisher(), nil
	}

	p, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.kafkaTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing transcript events",
		"brokers", brokers,
		"topic", c.kafkaTopic,
	)
	return p, nil
}
