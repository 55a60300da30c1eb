package main

import (
	"lodging/config"
	"lodging/helper"
	"lodging/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
	usage     = "Usage: migrate up|down|step-up|drop|version|force <version>"
)

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	if len(os.Args) < argLength {
		log.Fatal().Msg(usage)
	}

	if err := helper.Runner(cfg, os.Args[1], os.Args[argLength:]...); err != nil {
		log.Fatal().Err(err).Str("action", os.Args[1]).Msg(usage)
	}
}
