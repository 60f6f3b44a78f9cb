package catalog

// Index defines the catalog operations consumers depend on.
type Index interface {
	Upsert(row DocumentRow) error
	Delete(path string) error
	Get(path string) (*DocumentRow, error)
	List(f ListFilter) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Stats() (*Stats, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Index at compile time.
var _ Index = (*DB)(nil)
