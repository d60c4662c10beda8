package protocols

// Record is one clinical protocol as stored in the semantic index.
// task_code is the natural key linking a protocol to its catalog task.
type Record struct {
	TaskCode string   `json:"task_code"`
	TaskName string   `json:"task_name"`
	Priority string   `json:"priority"`
	Program  string   `json:"program"`
	Content  string   `json:"content"`
	FullText string   `json:"full_text"`
	Roles    []string `json:"roles,omitempty"`
}

// SearchResult pairs a record with its cosine similarity to the query.
type SearchResult struct {
	Record
	Score float64 `json:"score"`
}

// Placeholder is the record returned when no protocol matches a task
// code. Callers render it as-is rather than treating it as an error.
func Placeholder() Record {
	return Record{
		TaskCode: "N/A",
		TaskName: "N/A",
		Priority: "N/A",
		Program:  "N/A",
		Content:  "N/A",
		FullText: "",
	}
}
