package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proefgesprek",
	Short: "Oefen sollicitatiegesprekken met een AI-interviewer",
	Long: `proefgesprek simuleert een sollicitatiegesprek met een AI-interviewer.
Vragen streamen token voor token binnen, en na zeven vragen krijg je
persoonlijke feedback op je antwoorden.

Examples:
  proefgesprek serve                    # start de relay server
  proefgesprek practice                 # start een oefengesprek
  proefgesprek practice --save t.yaml   # bewaar het transcript na afloop

  proefgesprek config                   # bekijk configuratie`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
