package main

import "github.com/edutools/lms-export/cmd"

func main() {
	cmd.Execute()
}
