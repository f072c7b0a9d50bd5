// Command barcodectl renders barcodes offline with the barcodex SDK.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}
