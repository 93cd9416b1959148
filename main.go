package main

import "github.com/darmiel/vertrag/cmd"

func main() {
	cmd.Execute()
}
