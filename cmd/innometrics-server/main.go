package main

import "github.com/innometrics/innometrics-backend/cmd/innometrics-server/cmd"

func main() {
	cmd.Execute()
}
