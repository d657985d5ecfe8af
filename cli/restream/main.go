package main

import (
	"os"

	restreamcmder "github.com/papercomputeco/restream/cmd/restream"
)

func main() {
	cmd := restreamcmder.NewRestreamCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
