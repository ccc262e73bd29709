// Package dataset describes the fixed queries behind each endpoint and
// assembles their rows into response bodies.
package dataset

// Query is the per-endpoint configuration of a collection read. It is data,
// not code: every collection endpoint is one Query run through the same
// Service.
type Query struct {
	// Name labels logs and metrics.
	Name string
	// Table is the relation to read from.
	Table string
	// Columns is the explicit allow-list selected from Table.
	Columns []string
	// OrderBy is sorted descending so the most recent rows come first.
	OrderBy string
	// Limit is the hard row cap. It never comes from the client.
	Limit int
	// ListFields are normalized into string sequences when Normalize is set.
	ListFields []string
	// Normalize toggles the field normalizer for this endpoint.
	Normalize bool
}

// listFields returns the fields the normalizer should touch for q.
func (q Query) listFields() []string {
	if !q.Normalize {
		return nil
	}
	return q.ListFields
}

// Tables.
const (
	JobsTable = "jobs"
	D3Table   = "d3_data"
)

// Default hard caps.
const (
	DefaultCollectionLimit = 2000
	DefaultExportLimit     = 5000
)

// JobListFields are the list-valued listing attributes.
var JobListFields = []string{
	"technical_skills",
	"tools_used",
	"soft_skills",
	"domains",
	"tasks",
	"benefits",
}

// JobColumns is the allow-list for listing collections. description is left
// out on purpose; only the single-entity endpoint returns it.
var JobColumns = []string{
	"id",
	"title",
	"company",
	"country",
	"location",
	"link",
	"source",
	"date_posted",
	"salary_value",
	"salary_currency",
	"salary_type",
	"seniority_level",
	"experience_years",
	"technical_skills",
	"tools_used",
	"soft_skills",
	"domains",
	"tasks",
	"benefits",
	"hybrid_policy",
	"visa_sponsorship",
	"contract_type",
}

// D3ListFields are the list-valued visualization attributes.
var D3ListFields = []string{
	"technical_skills",
	"topic_keywords",
	"domains",
}

// D3Columns is the allow-list for visualization points.
var D3Columns = []string{
	"id",
	"title",
	"x",
	"y",
	"salary_value",
	"technical_skills",
	"topic_keywords",
	"domains",
}

// Limits overrides the default caps. Zero values keep the defaults.
type Limits struct {
	Jobs        int
	D3          int
	Export      int
	D3Normalize bool
}

// Catalog holds the queries served by the API.
type Catalog struct {
	Jobs      Query
	D3        Query
	JobsCSV   Query
	D3CSV     Query
	EntityTab string
}

// NewCatalog builds the endpoint catalog with the given limits applied.
func NewCatalog(l Limits) Catalog {
	return Catalog{
		Jobs: Query{
			Name:       "jobs",
			Table:      JobsTable,
			Columns:    JobColumns,
			OrderBy:    "date_posted",
			Limit:      orDefault(l.Jobs, DefaultCollectionLimit),
			ListFields: JobListFields,
			Normalize:  true,
		},
		D3: Query{
			Name:       "d3",
			Table:      D3Table,
			Columns:    D3Columns,
			OrderBy:    "id",
			Limit:      orDefault(l.D3, DefaultCollectionLimit),
			ListFields: D3ListFields,
			Normalize:  l.D3Normalize,
		},
		JobsCSV: Query{
			Name:    "jobs_export",
			Table:   JobsTable,
			Columns: JobColumns,
			OrderBy: "date_posted",
			Limit:   orDefault(l.Export, DefaultExportLimit),
		},
		D3CSV: Query{
			Name:    "d3_export",
			Table:   D3Table,
			Columns: D3Columns,
			OrderBy: "id",
			Limit:   orDefault(l.Export, DefaultExportLimit),
		},
		EntityTab: JobsTable,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
