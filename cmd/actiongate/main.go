package main

import "github.com/matanmalka1/actiongate/cmd/actiongate/cmd"

func main() {
	cmd.Execute()
}
