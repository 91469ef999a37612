package main

import "github.com/oshokin/focus-timer/cmd/focus-timer/cmd"

func main() {
	cmd.Execute()
}
