package main

import "lnk/cmd"

func main() {
	cmd.Execute()
}
