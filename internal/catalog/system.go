package catalog

import "context"

// System defines the public contract for catalog operations.
// Mutations persist to the database and republish the in-memory snapshot.
type System interface {
	Handler() *Handler

	// Current returns the latest published snapshot for classification reads.
	Current() *Snapshot
	// Reload loads all definitions from the database and publishes a new snapshot.
	Reload(ctx context.Context) (*Snapshot, error)

	ListTypes(ctx context.Context) ([]DocumentType, error)
	FindType(ctx context.Context, code string) (*DocumentType, error)
	CreateType(ctx context.Context, cmd CreateTypeCommand) (*DocumentType, error)
	UpdateType(ctx context.Context, code string, cmd UpdateTypeCommand) (*DocumentType, error)
	DeleteType(ctx context.Context, code string) error

	ListSignals(ctx context.Context) ([]Signal, error)
	CreateSignal(ctx context.Context, cmd SignalCommand) (*Signal, error)
	UpdateSignal(ctx context.Context, code string, cmd SignalCommand) (*Signal, error)
	DeleteSignal(ctx context.Context, code string) error

	// Export serializes the full catalog into its portable form.
	Export(ctx context.Context) (*Portable, error)
	// Import replaces the catalog with the portable form's contents.
	Import(ctx context.Context, p *Portable) error
}
