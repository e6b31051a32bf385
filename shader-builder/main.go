package main

import "shader-tools/shader-builder/cmd"

func main() {
	cmd.Execute()
}
