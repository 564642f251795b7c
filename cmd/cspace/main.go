// Command cspace inspects and converts configuration space files and scene
// archives.
package main

import (
	"os"
	"path/filepath"

	"github.com/absfs/cspace/vfs"
)

func main() {
	root := newRootCmd(vfs.NewOSFS(string(filepath.Separator)), filepath.Abs)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
