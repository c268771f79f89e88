package main

import "github.com/vietdv277/secops/cmd"

func main() {
	cmd.Execute()
}
