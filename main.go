package main

import "github.com/lepinkainen/bookcatalog/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
