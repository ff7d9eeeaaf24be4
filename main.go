package main

import "github.com/Mohsinsiddi/tokenapp/cmd"

func main() {
	cmd.Execute()
}
