package main

import (
	cmd "github.com/getsema/sema/cmd/sema"
	"github.com/getsema/sema/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting sema")
	cmd.Execute()
}
