// Command noenv runs the noenv analyzer over the packages named on the command line.
package main

import (
	"github.com/qolzam/forum/tools/linters/noenv"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(noenv.Analyzer)
}
