// Command tasktracker keeps an ordered to-do list with deadlines.
package main

import "github.com/twiced-technology-gmbh/tasktracker/cmd"

func main() {
	cmd.Execute()
}
