package main

import "github.com/jsphweid/harmalign/cmd"

func main() {
	cmd.Execute()
}
