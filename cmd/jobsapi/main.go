package main

import "github.com/JakeFAU/jobs-observatory/cmd"

func main() {
	cmd.Execute()
}
