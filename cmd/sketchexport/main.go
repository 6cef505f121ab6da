// Command sketchexport flattens a saved Layout Studio project to a PNG and
// prints a summary of its layers. Useful for inspecting autosaved documents
// without launching the application.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"layout-studio/internal/doc"
	"layout-studio/internal/project"
	"layout-studio/internal/raster"
)

func main() {
	storePath := flag.String("store", "", "Path to the project store (default: the application's store)")
	outPath := flag.String("out", "sketch.png", "Output PNG path")
	trim := flag.Bool("trim", false, "Crop the output to the visible content bounds")
	flag.Parse()

	store := project.OpenDefault()
	if *storePath != "" {
		store = project.Open(*storePath)
	}

	var f project.DocumentFile
	found, err := store.Get(project.DocumentKey, &f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read stored document: %v\n", err)
		os.Exit(1)
	}
	if !found {
		fmt.Fprintln(os.Stderr, "No saved document in store")
		os.Exit(1)
	}

	d := project.Restore(&f)
	printSummary(d)

	flat := d.Composite()
	var out image.Image = flat
	if *trim {
		bounds, has := raster.ContentBounds(d.VisibleBuffers())
		if !has {
			fmt.Fprintln(os.Stderr, "Document has no visible content to trim to")
			os.Exit(1)
		}
		out = flat.SubImage(bounds)
	}

	file, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	defer file.Close()

	if err := png.Encode(file, out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", *outPath, d.Width(), d.Height())
}

func printSummary(d *doc.Document) {
	fmt.Printf("Canvas: %dx%d", d.Width(), d.Height())
	if d.LensTag != "" {
		fmt.Printf("  lens: %s", d.LensTag)
	}
	fmt.Println()

	fmt.Printf("%-4s %-20s %-12s %7s  %s\n", "ID", "Name", "Blend", "Opacity", "Flags")
	layers := d.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		flags := ""
		if !l.Visible {
			flags += "hidden "
		}
		if len(l.Anchors) > 0 {
			flags += fmt.Sprintf("anchors:%d ", len(l.Anchors))
		}
		if len(l.Refs) > 0 {
			flags += fmt.Sprintf("refs:%d", len(l.Refs))
		}
		fmt.Printf("%-4d %-20s %-12s %6.0f%%  %s\n",
			l.ID, l.Name, l.Blend.String(), l.Opacity*100, flags)
	}

	if vps := d.VanishingPoints(); len(vps) > 0 {
		fmt.Printf("Vanishing points: %d (max %d)\n", len(vps), doc.MaxVanishingPoints)
	}
}
