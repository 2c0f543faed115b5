package main

import "github.com/icco/chromachord/cmd"

func main() {
	cmd.Execute()
}
