package main

import "github.com/dimasma0305/filelist/cmd"

func main() {
	cmd.Execute()
}
