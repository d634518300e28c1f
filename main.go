/*
	Copyright 2024 RaceVision
*/

package main

import "github.com/racevision/ingest-service-go/cmd"

func main() {
	cmd.Execute()
}
