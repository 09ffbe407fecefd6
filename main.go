package main

import "skillshare-backend/cmd"

func main() {
	cmd.Run()
}
