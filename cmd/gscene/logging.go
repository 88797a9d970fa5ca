package main

import (
	"github.com/soypat/gscene/log"
	"github.com/urfave/cli"
)

var logger = log.New("gscene-cli")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
