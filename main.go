package main

import "github.com/nextlevelbuilder/skillmatch/cmd"

func main() {
	cmd.Execute()
}
