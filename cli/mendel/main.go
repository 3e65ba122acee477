package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	mendelcmder "github.com/mendellabsco/mendel/cmd/mendel"
)

func main() {
	cmd := mendelcmder.NewMendelCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
