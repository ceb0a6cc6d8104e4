package main

import "github.com/yeisme/smartrepo/cmd"

func main() {
	cmd.Execute()
}
