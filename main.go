package main

import "github.com/xixi-furry/ikuai-komari-agent-docker/cmd"

func main() {
	cmd.Execute()
}
