// Package main is the entry point for the document pipeline service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/docpipe/cmd/docpipe/app"
)

func main() {
	app.NewApp().Run()
}
