package main

import (
	"rhythmcloud/cmd"
)

func main() {
	cmd.Execute()
}
