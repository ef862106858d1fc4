package main

import (
	"github.com/urfave/cli"

	"github.com/taigrr/zonevis/pkg/log"
)

var logger = log.New("zonevis")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
