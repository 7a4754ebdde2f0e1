package main

import "novel-translator/internal/cli"

func main() {
	cli.Execute()
}
