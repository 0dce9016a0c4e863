// Package main is the entry point for the streamwatch application.
package main

import (
	"github.com/samber/lo"

	"github.com/streamer459/streamingdev-sub000/cmd"
	"github.com/streamer459/streamingdev-sub000/config"
	"github.com/streamer459/streamingdev-sub000/internal/cache"
	"github.com/streamer459/streamingdev-sub000/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Expired cache entries are swept in the background on every start.
	go cache.CollectGarbage()

	cmd.Execute()
}
