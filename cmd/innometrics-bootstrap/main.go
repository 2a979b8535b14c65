package main

import "github.com/innometrics/innometrics-backend/cmd/innometrics-bootstrap/cmd"

func main() {
	cmd.Execute()
}
