// Command tally counts the songs recorded per artist and answers which song
// leads each artist.
package main

import "github.com/sarchlab/tally/cmd/tally/cmd"

func main() {
	cmd.Execute()
}
