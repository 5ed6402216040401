package main

import (
	"embed"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	graphApp "blocksgraph/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// Headless MCP mode: stdio server, no window.
	for _, arg := range os.Args[1:] {
		if arg == "--mcp" {
			graphApp.ServeMCP()
			return
		}
	}

	app := graphApp.New()

	err := wails.Run(&options.App{
		Title:     "BlocksGraph",
		Width:     1440,
		Height:    900,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
