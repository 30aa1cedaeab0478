/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/BigSlendr/BBE-Menu/cmd"

func main() {
	cmd.Execute()
}
