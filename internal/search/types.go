package search

// Column names the retrieval and delivery code reads directly.
const (
	ColName            = "name"
	ColDescription     = "Description"
	ColPests           = "Example pests controlled"
	ColApplications    = "Example applications"
	ColUses            = "Uses"
	ColEfficacy        = "Efficacy & activity"
	ColCanonicalSMILES = "Canonical SMILES"
	ColIsomericSMILES  = "Isomeric SMILES"
	ColCitation        = "Please cite as"
	ColPestsES         = "Ejemplos de plagas controladas"
	ColApplicationsES  = "Ejemplos de aplicaciones"
)

// OutputColumns are the fields returned to API clients, in order.
var OutputColumns = []string{
	ColName,
	ColDescription,
	ColPests,
	ColApplications,
	ColUses,
	ColEfficacy,
	ColCanonicalSMILES,
	ColIsomericSMILES,
	ColCitation,
}

// Record is one cleaned dataset row. Row is its position in the vector matrix.
type Record struct {
	Row    int
	Fields map[string]string
}

// Get returns the named field, or "" when the record does not carry it.
func (r Record) Get(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Hit is one ranked recommendation.
type Hit struct {
	Record     Record
	Similarity float64 // raw cosine similarity from the vector index
	Bonus      float64 // keyword overlap bonus
	Score      float64 // Similarity + Bonus
}
