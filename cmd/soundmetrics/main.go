package main

import "github.com/ewilliams-labs/soundmetrics/internal/cli"

func main() {
	cli.Execute()
}
