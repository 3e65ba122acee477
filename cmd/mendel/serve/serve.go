// Package servecmder provides the serve command for running the mendel API server.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mendellabsco/mendel/api"
	"github.com/mendellabsco/mendel/cmd/mendel/pipeline"
	"github.com/mendellabsco/mendel/pkg/config"
	"github.com/mendellabsco/mendel/pkg/dotdir"
	"github.com/mendellabsco/mendel/pkg/logger"
)

const serveLongDesc string = `Run the mendel HTTP API server.

Serves retrieval and tutoring over HTTP:
  GET  /ping        Health check
  GET  /v1/search   Retrieve the most relevant chunks for a query
  POST /v1/ask      Answer a question, with optional session history

Sessions posted to /v1/ask with a session_id carry conversation history
across requests, so follow-up questions work the same as in mendel chat.

Examples:
  mendel serve
  mendel serve --listen :9000
  MENDEL_API_LISTEN=:9000 mendel serve`

const serveShortDesc string = "Run the HTTP API server"

type commander struct {
	settings  pipeline.Settings
	configDir string
	debug     bool

	listen    string
	storeProv string
	storeTgt  string
	storeColl string
	embProv   string
	embTgt    string
	embModel  string
	embDims   uint
	llmProv   string
	llmTgt    string
	llmModel  string
	topK      int
}

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagStoreProvider,
	config.FlagStoreTarget,
	config.FlagStoreCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProvider,
	config.FlagLLMTarget,
	config.FlagLLMModel,
	config.FlagTopK,
}

func NewServeCmd() *cobra.Command {
	c := &commander{}

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   serveShortDesc,
		Long:    serveLongDesc,
		Args:    cobra.NoArgs,
		PreRunE: c.preRun,
		RunE:    c.run,
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &c.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreProvider, &c.storeProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreTarget, &c.storeTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreCollection, &c.storeColl)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &c.embProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &c.embTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &c.embModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &c.embDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &c.llmProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTarget, &c.llmTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &c.llmModel)
	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &c.topK)

	return cmd
}

func (c *commander) preRun(cmd *cobra.Command, _ []string) error {
	c.debug, _ = cmd.Flags().GetBool("debug")
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
	c.settings = pipeline.FromViper(v)

	return nil
}

func (c *commander) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log, closeLog := c.newLogger()
	defer closeLog()

	driver, err := pipeline.NewDriver(ctx, c.configDir, c.settings, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	embedder, err := pipeline.NewEmbedder(c.settings)
	if err != nil {
		return err
	}
	defer embedder.Close()

	generator, err := pipeline.NewGenerator(c.configDir, c.settings)
	if err != nil {
		return err
	}
	defer generator.Close()

	retriever, tutor := pipeline.NewTutor(driver, embedder, generator, c.settings, log)

	server := api.NewServer(api.Config{
		ListenAddr:  c.settings.APIListen,
		DefaultTopK: c.settings.TopK,
	}, retriever, tutor, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down API server: %w", err)
		}
	}

	return nil
}

// newLogger builds the serve logger: pretty output on the terminal plus
// JSON records appended to api.log in the .mendel/ directory. Falls back
// to terminal-only logging when the log file cannot be opened.
func (c *commander) newLogger() (*slog.Logger, func()) {
	pretty := logger.New(logger.WithPretty(true), logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil || target == "" {
		return pretty, func() {}
	}

	logFile, err := os.OpenFile(filepath.Join(target, "api.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		pretty.Warn("could not open api.log, logging to terminal only", "error", err)
		return pretty, func() {}
	}

	jsonLog := logger.New(logger.WithJSON(true), logger.WithDebug(c.debug), logger.WithWriter(logFile))

	return logger.Multi(pretty, jsonLog), func() { _ = logFile.Close() }
}
