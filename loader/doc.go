// Package loader programs Intel HEX images into the Flash of a device.
//
// # Overview
//
// Program runs the complete sequence:
//   - Validating that the image stays inside user Flash
//   - Programming each page the image touches
//   - Optionally erasing user pages the image leaves untouched
//   - Verifying programmed data
//
// Bytes of a partially covered page that the image does not define keep
// their value: those pages go through the scratch-page update of package
// flashutil instead of a plain erase.
//
// # Basic Usage
//
//	img, err := hexfile.LoadFile("logger.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ld := loader.New(flash.New(bus, def))
//	if err := ld.Program(context.Background(), img); err != nil {
//	    log.Fatal(err)
//	}
//
// Any flash.Device works, including a remote.Client.
//
// # Progress Tracking
//
//	ld := loader.New(dev,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
//
// # Error Handling
//
//	err := ld.Program(ctx, img)
//	var rangeErr *loader.PageOutOfRangeError
//	if errors.As(err, &rangeErr) {
//	    fmt.Printf("image reaches 0x%04X\n", rangeErr.Addr)
//	}
//
//	var verifyErr *loader.VerifyMismatchError
//	if errors.As(err, &verifyErr) {
//	    fmt.Printf("byte at 0x%04X did not program\n", verifyErr.Addr)
//	}
package loader
