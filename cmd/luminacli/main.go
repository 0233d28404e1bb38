package main

import "github.com/thetatoken/lumina/cmd/luminacli/cmd"

func main() {
	cmd.Execute()
}
