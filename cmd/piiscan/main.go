package main

import "github.com/dbsmedya/piiscan/cmd/piiscan/cmd"

func main() {
	cmd.Execute()
}
