package main

import "github.com/LegacyCodeHQ/apicheck/cmd"

func main() {
	cmd.Execute()
}
