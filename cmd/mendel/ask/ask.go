// Package askcmder provides the ask command for one-shot questions.
package askcmder

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mendellabsco/mendel/cmd/mendel/pipeline"
	"github.com/mendellabsco/mendel/pkg/cliui"
	"github.com/mendellabsco/mendel/pkg/config"
	"github.com/mendellabsco/mendel/pkg/logger"
	"github.com/mendellabsco/mendel/pkg/rag"
	"github.com/mendellabsco/mendel/pkg/vector"
)

const askLongDesc string = `Ask a one-shot question against the ingested knowledge base.

Retrieves the most relevant textbook chunks, sends them alongside your
question to the configured LLM, and prints the answer with the source
documents it drew from.

Examples:
  mendel ask "What is Mendel's law of segregation?"
  mendel ask -k 8 "How does crossing over affect linkage?"
  mendel ask -m claude-sonnet-4-20250514 "What is a Punnett square?"`

const askShortDesc string = "Ask a one-shot question with cited sources"

type commander struct {
	settings  pipeline.Settings
	configDir string
	debug     bool

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

var askFlags = []string{
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

func NewAskCmd() *cobra.Command {
	c := &commander{}

	cmd := &cobra.Command{
		Use:     "ask <question>",
		Short:   askShortDesc,
		Long:    askLongDesc,
		Args:    cobra.ExactArgs(1),
		PreRunE: c.preRun,
		RunE:    c.run,
	}

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

	config.BindRegisteredFlags(v, cmd, config.Flags, askFlags)
	c.settings = pipeline.FromViper(v)

	return nil
}

func (c *commander) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	log := logger.New(logger.WithPretty(true), logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

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

	_, tutor := pipeline.NewTutor(driver, embedder, generator, c.settings, log)

	var answer *rag.Answer
	err = cliui.Step(os.Stderr, "Thinking", func() error {
		var err error
		answer, err = tutor.Ask(ctx, question, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, vector.ErrEmptyStore) {
			return fmt.Errorf("%w\n\nRun 'mendel ingest' to build the knowledge base first", err)
		}
		return err
	}

	rendered, renderErr := cliui.RenderMarkdown(answer.Text)
	if renderErr != nil {
		rendered = answer.Text
	}
	fmt.Println(rendered)

	if len(answer.Sources) > 0 {
		fmt.Printf("  %s %s\n\n",
			cliui.DimStyle.Render("Sources:"),
			cliui.SourceStyle.Render(strings.Join(answer.Sources, ", ")),
		)
	}

	return nil
}
