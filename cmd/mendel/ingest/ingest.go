// Package ingestcmder provides the ingest command, which rebuilds the
// vector store from a plain text corpus directory.
package ingestcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mendellabsco/mendel/cmd/mendel/pipeline"
	"github.com/mendellabsco/mendel/pkg/cliui"
	"github.com/mendellabsco/mendel/pkg/config"
	"github.com/mendellabsco/mendel/pkg/corpus"
	"github.com/mendellabsco/mendel/pkg/ingest"
	"github.com/mendellabsco/mendel/pkg/logger"
	"github.com/mendellabsco/mendel/pkg/vector"
)

const ingestLongDesc string = `Rebuild the knowledge base from a corpus of plain text files.

Reads every .txt file in the corpus directory, splits each into overlapping
chunks, embeds the chunks, and loads them into the configured vector store.
The store is reset first, so ingestion is a full rebuild: running it twice
on the same corpus yields the same store.

Examples:
  mendel ingest                          Ingest from the configured corpus dir
  mendel ingest --corpus ./textbooks     Ingest a specific directory
  mendel ingest --chunk-size 800 --chunk-overlap 150`

const ingestShortDesc string = "Build the knowledge base from a corpus directory"

type commander struct {
	settings  pipeline.Settings
	configDir string
	debug     bool

	corpusDir    string
	chunkSize    int
	chunkOverlap int
	storeProv    string
	storeTgt     string
	storeColl    string
	embProv      string
	embTgt       string
	embModel     string
	embDims      uint
}

var ingestFlags = []string{
	config.FlagCorpusDir,
	config.FlagChunkSize,
	config.FlagChunkOverlap,
	config.FlagStoreProvider,
	config.FlagStoreTarget,
	config.FlagStoreCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewIngestCmd() *cobra.Command {
	c := &commander{}

	cmd := &cobra.Command{
		Use:     "ingest",
		Short:   ingestShortDesc,
		Long:    ingestLongDesc,
		Args:    cobra.NoArgs,
		PreRunE: c.preRun,
		RunE:    c.run,
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusDir, &c.corpusDir)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkSize, &c.chunkSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkOverlap, &c.chunkOverlap)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreProvider, &c.storeProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreTarget, &c.storeTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreCollection, &c.storeColl)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &c.embProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &c.embTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &c.embModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &c.embDims)

	return cmd
}

func (c *commander) preRun(cmd *cobra.Command, _ []string) error {
	c.debug, _ = cmd.Flags().GetBool("debug")
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, ingestFlags)
	c.settings = pipeline.FromViper(v)

	return nil
}

func (c *commander) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.New(logger.WithPretty(true), logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	if c.settings.CorpusDir == "" {
		return fmt.Errorf("no corpus directory configured: set corpus.dir or pass --corpus")
	}

	var docs []corpus.Document
	err := cliui.Step(os.Stdout, fmt.Sprintf("Loading corpus from %s", c.settings.CorpusDir), func() error {
		var err error
		docs, err = corpus.LoadDir(c.settings.CorpusDir)
		return err
	})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no .txt documents found in %s", c.settings.CorpusDir)
	}

	var driver vector.Driver
	err = cliui.Step(os.Stdout, fmt.Sprintf("Connecting to %s vector store", c.settings.StoreProvider), func() error {
		var err error
		driver, err = pipeline.NewDriver(ctx, c.configDir, c.settings, log)
		return err
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	embedder, err := pipeline.NewEmbedder(c.settings)
	if err != nil {
		return err
	}
	defer embedder.Close()

	ingester, err := ingest.NewIngester(driver, embedder, ingest.Config{
		ChunkSize: c.settings.ChunkSize,
		Overlap:   c.settings.ChunkOverlap,
	}, log)
	if err != nil {
		return err
	}

	var result *ingest.Result
	err = cliui.Step(os.Stdout, "Embedding and storing chunks", func() error {
		var err error
		result, err = ingester.Run(ctx, docs, func(p ingest.Progress) {
			log.Debug("ingest progress", "done", p.ChunksDone, "total", p.ChunksTotal)
		})
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Ingested %s documents as %s chunks into %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("%d", result.Documents)),
		cliui.NameStyle.Render(fmt.Sprintf("%d", result.Chunks)),
		cliui.NameStyle.Render(c.settings.StoreProvider),
	)

	return nil
}
