package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCalculation(_ *CalculationEvent) error       { return nil }
func (n *NoopRecorder) RecordClassification(_ *ClassificationEvent) error { return nil }
func (n *NoopRecorder) RecordSimulation(_ *SimulationEvent) error         { return nil }
func (n *NoopRecorder) RecordCatalogRun(_ *CatalogRun) error              { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
