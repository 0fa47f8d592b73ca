// Command fplfeed collects the public FPL feed snapshot into data/.
package main

import (
	"fmt"
	"os"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/cli"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
	"github.com/morikuni/failure/v2"
)

func main() {
	err := cli.Run()
	if err == nil {
		return
	}

	userMessage := err.Error()
	if fmsg := failure.MessageOf(err); fmsg != "" {
		userMessage = fmsg.String()
	}
	// full chain with codes and context, visible with FPLFEED_DEBUG
	log.Debug("Command failed", "error", fmt.Sprintf("%+v", err))
	fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
	os.Exit(1)
}
