package main

import "github.com/n-WN/prompt-manager/cmd"

func main() {
	cmd.Execute()
}
