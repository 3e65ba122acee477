// Package chatcmder provides the interactive tutoring session command.
package chatcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mendellabsco/mendel/cmd/mendel/pipeline"
	"github.com/mendellabsco/mendel/pkg/cliui"
	"github.com/mendellabsco/mendel/pkg/config"
	"github.com/mendellabsco/mendel/pkg/llm"
	"github.com/mendellabsco/mendel/pkg/logger"
	"github.com/mendellabsco/mendel/pkg/rag"
	"github.com/mendellabsco/mendel/pkg/vector"
)

const chatLongDesc string = `Hold an interactive tutoring session over the knowledge base.

Each question is answered with retrieved textbook context, and the
conversation history carries across turns so follow-up questions work.
Type /exit or press Ctrl-D to leave.

Examples:
  mendel chat
  mendel chat -k 8 -m claude-sonnet-4-20250514`

const chatShortDesc string = "Hold an interactive tutoring session"

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Render("you ›")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("mendel ›")
)

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

var chatFlags = []string{
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

func NewChatCmd() *cobra.Command {
	c := &commander{}

	cmd := &cobra.Command{
		Use:     "chat",
		Short:   chatShortDesc,
		Long:    chatLongDesc,
		Args:    cobra.NoArgs,
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

	config.BindRegisteredFlags(v, cmd, config.Flags, chatFlags)
	c.settings = pipeline.FromViper(v)

	return nil
}

func (c *commander) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
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

	fmt.Printf("\n  %s %s\n\n",
		cliui.HeaderStyle.Render("mendel chat"),
		cliui.DimStyle.Render("(/exit or Ctrl-D to leave)"),
	)

	var history []llm.Turn
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("%s ", userPrompt)
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "/exit" || question == "/quit" {
			break
		}

		var answer *rag.Answer
		err := cliui.Step(os.Stderr, "Thinking", func() error {
			var err error
			answer, err = tutor.Ask(ctx, question, history)
			return err
		})
		if err != nil {
			// The failed turn is not added to history, so the
			// conversation can continue from the last good state.
			if errors.Is(err, vector.ErrEmptyStore) {
				fmt.Printf("  %s %s\n", cliui.FailMark, "knowledge base is empty, run 'mendel ingest' first")
				continue
			}
			fmt.Printf("  %s %v\n", cliui.FailMark, err)
			continue
		}

		rendered, renderErr := cliui.RenderMarkdown(answer.Text)
		if renderErr != nil {
			rendered = answer.Text
		}
		fmt.Printf("%s\n%s", assistantPrompt, rendered)

		if len(answer.Sources) > 0 {
			fmt.Printf("  %s %s\n\n",
				cliui.DimStyle.Render("Sources:"),
				cliui.SourceStyle.Render(strings.Join(answer.Sources, ", ")),
			)
		}

		history = append(history,
			llm.Turn{Role: llm.RoleUser, Content: question},
			llm.Turn{Role: llm.RoleAssistant, Content: answer.Text},
		)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}
