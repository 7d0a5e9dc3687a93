package main

import "github.com/Tiliavir/daily-hours/cmd"

func main() {
	cmd.Execute()
}
