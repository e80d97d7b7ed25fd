// cmd/geooverlay/main.go
package main

import (
	"github.com/rosbache/multiImageTextOverlay/pkg/cli"
)

func main() {
	cli.Execute()
}
