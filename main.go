package main

import "github.com/jmehdipour/workflow-relay/cmd"

func main() {
	cmd.Execute()
}
