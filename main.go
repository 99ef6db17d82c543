package main

import "github.com/ui5-tools/odatasync/cmd"

func main() {
	cmd.Execute()
}
