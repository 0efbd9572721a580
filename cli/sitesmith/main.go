package main

import (
	"os"

	sitesmithcmder "github.com/papercomputeco/sitesmith/cmd/sitesmith"
)

func main() {
	cmd := sitesmithcmder.NewSitesmithCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
