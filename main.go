package main

import "github.com/Anupamak004/Public-speaking-coach/cmd"

func main() {
	cmd.Execute()
}
