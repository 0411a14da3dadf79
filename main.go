package main

import "github.com/rskv-p/qtree/cmd"

func main() {
	cmd.Execute()
}
