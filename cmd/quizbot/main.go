package main

import "github.com/diogo/quizbot/internal/commands"

func main() {
	commands.Execute()
}
