package monitor

// WriterProbe reports whether some process currently holds a file open for
// writing. Implementations are best effort: when the underlying facility is
// unavailable the probe must answer "not locked" rather than fail, leaving
// the stability gate as the only guard.
type WriterProbe interface {
	// OpenForWrite reports whether path has an open writer.
	OpenForWrite(path string) bool
}

// noopProbe is the fallback on platforms (or hosts) without a usable lock
// facility.
type noopProbe struct{}

func (noopProbe) OpenForWrite(string) bool { return false }
