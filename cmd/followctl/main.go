package main

import "github.com/outreachworks/followup/cmd/followctl/cmd"

func main() {
	cmd.Execute()
}
