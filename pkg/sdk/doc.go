// Package barcodex renders EAN-13 and ITF-14 barcodes in-process, without the
// HTTP service. It wires the same rendering engine, batch coordinator and
// archive assembler the server uses.
//
// # Batch archive
//
//	client, _ := barcodex.New(barcodex.WithWorkDir("/tmp/barcodes"))
//	archive, err := client.Generate(ctx, []string{"4901234567894", "12345678901234"},
//	    barcodex.Options{Format: barcodex.FormatSVG, FilenamePrefix: "sku-"})
//	_ = os.WriteFile(archive.Filename, archive.Data, 0o644)
//
// # Single code
//
//	path, err := client.Render(ctx, "4901234567894", barcodex.Options{}, "out/label.png")
//	preview, err := client.Preview(ctx, "4901234567894", barcodex.Options{HeightMM: 20})
//
// Codes are classified by length: 14 digits render as ITF-14, 12 or 13 digits
// as EAN-13. Anything else is reported in the archive's report.json.
package barcodex
