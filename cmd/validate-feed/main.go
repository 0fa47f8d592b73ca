// Command validate-feed checks the shape of a written snapshot.
//
// Usage:
//
//	validate-feed [path]
//
// The path defaults to data/latest.json. The exit status is 0 when the
// snapshot looks OK and 1 otherwise.
package main

import (
	"os"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/validate"
)

func main() {
	path := validate.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	os.Exit(validate.Run(path, os.Stdout))
}
