package main

import "note-updater/cmd"

func main() {
	cmd.Execute()
}
