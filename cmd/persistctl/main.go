package main

import "github.com/stssoft/persist/cmd/persistctl/cmd"

func main() {
	cmd.Execute()
}
