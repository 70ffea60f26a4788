package main

import "github.com/OpenTraceLab/OpenTraceBench/cmd/otbench/cmd"

func main() {
	cmd.Execute()
}
