package main

import "reviews-cli/cmd"

func main() {
	cmd.Execute()
}
