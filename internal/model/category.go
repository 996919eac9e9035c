package model

// CategoryLabel is the hierarchical label assigned to a request URL.
// Category and Subcategory come from a closed rule set; Detail is free text
// (typically the decoded page title or an extracted entity id).
type CategoryLabel struct {
	Category    string
	Subcategory string
	Detail      string
}
