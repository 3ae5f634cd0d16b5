// Command bible-study is a terminal Bible reader with reading progress and
// an AI study assistant. It can also serve the same features over HTTP.
package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

// CLI defines the command-line interface.
var CLI struct {
	Config string `name:"config" short:"c" help:"Path to a config file" type:"path"`

	Read     ReadCmd     `cmd:"" default:"withargs" help:"Open the reader (default)"`
	Serve    ServeCmd    `cmd:"" help:"Start the JSON HTTP API"`
	Progress ProgressCmd `cmd:"" help:"Print reading progress per book"`
	Search   SearchCmd   `cmd:"" help:"Search a local translation"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bible-study"),
		kong.Description("Read the Bible, track progress and study with an AI assistant"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
