package main

import "boshladle/cmd"

func main() {
	cmd.Execute()
}
