package main

import "github.com/ValentinKolb/dCaps/cmd"

func main() {
	cmd.Execute()
}
