// Command zaril is a streaming chat client for Groq-hosted language models.
package main

import "github.com/diogo/zaril/internal/commands"

func main() {
	commands.Execute()
}
