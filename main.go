package main

import "rrt/cmd"

func main() {
	cmd.Execute()
}
