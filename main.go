package main

import "github.com/shouni/go-waze-link/cmd"

func main() {
	cmd.Execute()
}
