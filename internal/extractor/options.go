package extractor

import (
	"fmt"

	"github.com/alevsk/tagview/internal/rawinfo"
)

// Options contains configuration options for the extractor
type Options struct {
	// Stealth enables reading pixel data for hidden metadata
	Stealth bool
	// StegoReader overrides the pixel data reader used when Stealth is enabled
	StegoReader rawinfo.StegoReader
}

// DefaultOptions returns the default extractor options
func DefaultOptions() *Options {
	return &Options{
		Stealth: true,
	}
}

// Variant identifies the options that change extraction results. Results produced with
// different variants of the same image must not be shared.
func (o *Options) Variant() string {
	if !o.Stealth {
		return "stealth=false"
	}
	if o.StegoReader != nil {
		return fmt.Sprintf("stealth=%T", o.StegoReader)
	}
	return "stealth=true"
}
