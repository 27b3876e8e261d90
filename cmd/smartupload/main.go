package main

import (
	"fmt"
	"os"

	"github.com/ArtisanClarinets/smart-upload-pipeline/cmd/smartupload/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
