package main

import "crew-match-backend/cmd"

func main() {
	cmd.Run()
}
