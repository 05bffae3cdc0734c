package main

import "github.com/OpenTraceLab/tapdecode/cmd/tapdecode/cmd"

func main() {
	cmd.Execute()
}
