package main

import "github.com/markvz/proefgesprek/cmd"

func main() {
	cmd.Execute()
}
