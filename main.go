package main

import "github.com/Tiliavir/enats/cmd"

func main() {
	cmd.Execute()
}
