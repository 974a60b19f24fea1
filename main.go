package main

import "github.com/fistotech04-svg/Flip-Book-Customize/cmd"

func main() {
	cmd.Execute()
}
