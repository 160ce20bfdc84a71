package main

import "github.com/eventhub/events-api/cmd/events-api/cmd"

func main() {
	cmd.Execute()
}
