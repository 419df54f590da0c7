package policy

// StrictPolicy aborts the listing on the first bad line.
type StrictPolicy struct {
	rec *statsRecorder
}

// NewStrictPolicy creates a strict policy.
func NewStrictPolicy() *StrictPolicy {
	return &StrictPolicy{rec: newStatsRecorder()}
}

// HandleDecodeError counts the error and returns it.
func (p *StrictPolicy) HandleDecodeError(_ int, _ string, err error) error {
	p.rec.incTotalErrors()
	return err
}

// Stats returns policy statistics.
func (p *StrictPolicy) Stats() Stats {
	return p.rec.snapshot()
}

// Name returns "strict".
func (p *StrictPolicy) Name() string { return NameStrict }
