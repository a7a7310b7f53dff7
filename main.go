package main

import "faqrag/cmd"

func main() {
	cmd.Execute()
}
