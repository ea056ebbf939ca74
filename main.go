// main.go
//
// Entry point; CLI handling lives in the Cobra commands under cmd/

package main

import (
	"github.com/backoff-sim/backoff-sim/cmd"
)

func main() {
	cmd.Execute()
}
