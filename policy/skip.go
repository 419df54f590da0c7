package policy

// SkipPolicy drops bad lines and counts them by decode error kind.
//
// Errors that are not line decode errors (I/O, oversized lines) are never
// dropped and are returned unchanged.
type SkipPolicy struct {
	rec *statsRecorder
}

// NewSkipPolicy creates a skip policy.
func NewSkipPolicy() *SkipPolicy {
	return &SkipPolicy{rec: newStatsRecorder()}
}

// HandleDecodeError drops decode errors and returns anything else.
func (p *SkipPolicy) HandleDecodeError(_ int, _ string, err error) error {
	p.rec.incTotalErrors()
	kind, ok := decodeKind(err)
	if !ok {
		return err
	}
	p.rec.incDropped(kind)
	return nil
}

// Stats returns policy statistics.
func (p *SkipPolicy) Stats() Stats {
	return p.rec.snapshot()
}

// Name returns "skip".
func (p *SkipPolicy) Name() string { return NameSkip }
