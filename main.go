/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "talewire/cmd"

func main() {
	cmd.Execute()
}
