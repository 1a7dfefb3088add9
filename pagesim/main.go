// Command pagesim replays request files with the FIFO, LRU and OPT page
// replacement policies and compares how many page faults each one causes.
package main

import "github.com/sarchlab/pagesim/pagesim/cmd"

func main() {
	cmd.Execute()
}
