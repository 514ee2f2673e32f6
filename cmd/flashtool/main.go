// Command flashtool drives the Flash editor against a simulated part.
//
// Usage:
//
//	flashtool [-v=N] [-logtostderr] COMMAND [ARGUMENTS]
//
// Logging flags are the glog flags and come before the command.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/golang/glog"
)

type tool struct {
	descr string
	main  func(args []string)
}

var tools = map[string]tool{
	"selftest": {selftestDescr, selftestMain},
	"hex":      {hexDescr, hexMain},
	"program":  {programDescr, programMain},
	"logger":   {loggerDescr, loggerMain},
	"serve":    {serveDescr, serveMain},
}

func printToolList() {
	names := make([]string, 0, len(tools))
	maxLen := 0
	for k := range tools {
		names = append(names, k)
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	sort.Strings(names)
	uw := os.Stderr
	uw.WriteString("Usage:\n  flashtool [GLOG FLAGS] COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	flag.Usage = printToolList
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	if len(args) < 1 || args[0] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[args[0]]
	if !ok {
		printToolList()
		exit(1)
	}
	tool.main(args)
}
