package domain

// IndexHit is one raw nearest-neighbor row from the credential or skill
// index. Distance is the raw vector distance straight from the index;
// converting it to a presentable score is the search layer's job.
type IndexHit struct {
	EmployeeID string
	Label      string
	Distance   float64
}

// FragmentHit is one raw nearest-neighbor row from the document fragment
// index.
type FragmentHit struct {
	EmployeeID string
	Filename   string
	Page       int
	Text       string
	Distance   float64
}
