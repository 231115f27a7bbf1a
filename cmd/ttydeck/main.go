package main

import (
	"os"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/cmd"
)

func main() {
	cli.SetupColorProfile()

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
