// Package mendelcmder
package mendelcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/mendellabsco/mendel/cmd/mendel/ask"
	authcmder "github.com/mendellabsco/mendel/cmd/mendel/auth"
	chatcmder "github.com/mendellabsco/mendel/cmd/mendel/chat"
	configcmder "github.com/mendellabsco/mendel/cmd/mendel/config"
	ingestcmder "github.com/mendellabsco/mendel/cmd/mendel/ingest"
	initcmder "github.com/mendellabsco/mendel/cmd/mendel/init"
	searchcmder "github.com/mendellabsco/mendel/cmd/mendel/search"
	servecmder "github.com/mendellabsco/mendel/cmd/mendel/serve"
	versioncmder "github.com/mendellabsco/mendel/cmd/version"
)

const mendelLongDesc string = `Mendel is a genetics tutor over your own textbook corpus.

Ingest plain text textbooks into a local vector store, then ask questions:
  mendel ingest             Build the knowledge base from a corpus directory
  mendel ask "question"     Ask a one-shot question with cited sources
  mendel chat               Hold an interactive tutoring session
  mendel serve              Run the HTTP API server`

const mendelShortDesc string = "Mendel - RAG genetics tutor"

func NewMendelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mendel",
		Short: mendelShortDesc,
		Long:  mendelLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .mendel/ config directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
