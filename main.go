package main

import "task-assign.com/task-assign/cmd"

func main() {
	cmd.Execute()
}
