package main

import "gitlab.com/agentlink-marketplace/attribution_api/cmd"

func main() {
	cmd.Execute()
}
