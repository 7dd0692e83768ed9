package main

import "github.com/seemspyo/chamfer/cmd/chamferapi/cmd"

func main() {
	cmd.Execute()
}
