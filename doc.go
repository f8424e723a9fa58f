/*
Package iconvault is an icon asset pipeline. It discovers svg icons laid out one directory per icon,
optimizes them with svgo, renders them to several png sizes, compresses the renditions with pngquant,
uploads the results to an S3 compatible bucket and regenerates a markdown index of the catalog.

The package provides a command line interface, supporting a sub-command for every stage.
To check the supported commands type:

	$ iconvault --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"
		"os"

		"github.com/esimov/iconvault"
		"github.com/esimov/iconvault/storage"
		"github.com/rs/zerolog"
	)

	func main() {
		cfg := iconvault.DefaultConfig()
		logger := zerolog.New(os.Stderr)

		p, err := iconvault.NewPipeline(cfg, storage.NewLocalBucket("out"), logger)
		if err != nil {
			fmt.Printf("Error creating the pipeline: %s", err.Error())
			return
		}
		if _, err := p.Run(context.Background()); err != nil {
			fmt.Printf("Error publishing the icons: %s", err.Error())
		}
	}
*/
package iconvault
