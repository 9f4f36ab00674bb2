package main

import "github.com/aleksaelezovic/jelly/cmd/jelly/cmd"

func main() {
	cmd.Execute()
}
