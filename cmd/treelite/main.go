// Package main is the entry point for the treelite command.
package main

func main() {
	Execute()
}
