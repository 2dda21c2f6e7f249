package main

import "github.com/securycore/snowdrift/cmd"

func main() {
	cmd.Execute()
}
