package main

import "github.com/hintwise/hintgate/cmd"

func main() {
	cmd.Execute()
}
