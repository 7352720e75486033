//go:build !unix

package monitor

// No portable writer-lock facility here; the stability gate stands alone.
func newWriterProbe() WriterProbe { return noopProbe{} }
