package index

import "github.com/agrobio/biobot/internal/search"

// Artifact file names inside an index directory.
const (
	ConfigFile = "config.json"
	VectorFile = "vectors.f32"
	JSONLFile  = "records.jsonl"
	SQLiteFile = "records.db"

	// CurrentVersion is the artifact layout version written by Build.
	CurrentVersion = 1
)

// Metadata table formats.
const (
	MetaJSONL  = "jsonl"
	MetaSQLite = "sqlite"
)

// Config describes a built index and how to interpret its artifacts. Model, ColsEN and
// ColsES are what query time needs to embed queries the same way records were embedded.
type Config struct {
	Model        string   `json:"model"`
	ColsEN       []string `json:"cols_en"`
	ColsES       []string `json:"cols_es"`
	IndexVersion int      `json:"index_version"`
	CreatedAt    string   `json:"created_at"`
	Dim          int      `json:"dim"`
	Rows         int      `json:"rows"`
	Columns      []string `json:"columns"`
	VectorFile   string   `json:"vector_file"`
	MetaFile     string   `json:"meta_file"`
	MetaFormat   string   `json:"meta_format"`
}

// Index is a loaded index. Records[i] is described by Vectors[i*Dim:(i+1)*Dim].
type Index struct {
	Config  Config
	Records []search.Record
	Vectors []float32
}

// Vector returns the embedding of row i.
func (idx *Index) Vector(i int) []float32 {
	d := idx.Config.Dim
	return idx.Vectors[i*d : (i+1)*d]
}

func (c *Config) applyDefaults() {
	if c.VectorFile == "" {
		c.VectorFile = VectorFile
	}
	if c.MetaFormat == "" {
		c.MetaFormat = MetaJSONL
	}
	if c.MetaFile == "" {
		c.MetaFile = metaFileFor(c.MetaFormat)
	}
	if c.IndexVersion == 0 {
		c.IndexVersion = CurrentVersion
	}
}

func metaFileFor(format string) string {
	if format == MetaSQLite {
		return SQLiteFile
	}
	return JSONLFile
}
