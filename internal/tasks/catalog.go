package tasks

// Task is a static catalog entry for a triggered clinical rule.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// Catalog is the fixed task list shipped with the application. Immutable
// at runtime; extend by appending entries here.
var Catalog = []Task{
	// Hyperglycemia
	{ID: "BGM-104", Name: "Hyperglycemia > 400, daily", Priority: "P0", Category: "Hyperglycemia"},
	{ID: "BGM-103", Name: "Hyperglycemia > 250", Priority: "P2", Category: "Hyperglycemia"},
	{ID: "BGM-102", Name: "Hyperglycemia > 180", Priority: "P3", Category: "Hyperglycemia"},
	{ID: "BGM-107", Name: "BG Average > 220 for 2 weeks (A1c 8-8.9)", Priority: "P2", Category: "Hyperglycemia"},
	{ID: "BGM-106", Name: "BG Average > 190 for 2 weeks (A1c 7-7.9)", Priority: "P2", Category: "Hyperglycemia"},
	{ID: "BGM-105", Name: "BG Average > 170 for 2 weeks (A1c<7)", Priority: "P2", Category: "Hyperglycemia"},

	// Hypoglycemia
	{ID: "BGM-100", Name: "Hypoglycemia < 54", Priority: "P0", Category: "Hypoglycemia"},
	{ID: "BGM-101", Name: "Hypoglycemia < 70", Priority: "P1", Category: "Hypoglycemia"},

	// A1C Management
	{ID: "A1c-101", Name: "Review A1c ingested > 7.0%", Priority: "P2", Category: "A1C Management"},

	// Hypertension
	{ID: "BP-105", Name: "Hypertension (High): BP > 180/120", Priority: "P0", Category: "Hypertension"},
	{ID: "BP-104", Name: "Hypertension: BP > 160/100", Priority: "P1", Category: "Hypertension"},
	{ID: "BP-103", Name: "Hypertension: BP > 150/90", Priority: "P1", Category: "Hypertension"},
	{ID: "BP-102", Name: "Hypertension: BP > 140/90", Priority: "P1", Category: "Hypertension"},
	{ID: "BP-101", Name: "Hypertension: BP > 130/80", Priority: "P2", Category: "Hypertension"},

	// Hypotension
	{ID: "BP-106", Name: "Hypotension (Low): BP < 90/60", Priority: "P1", Category: "Hypotension"},

	// Blood Pressure Monitoring
	{ID: "BP-100", Name: "Remind member to take initial BP reading", Priority: "P2", Category: "BP Monitoring"},

	// Patient Engagement
	{ID: "ENG-100", Name: "Greet new member", Priority: "P2", Category: "Engagement"},
	{ID: "ENG-101", Name: "Schedule telehealth visit", Priority: "P2", Category: "Engagement"},
	{ID: "ENG-110", Name: "Greet new member - WL Program", Priority: "P2", Category: "Engagement"},

	// Mental Health Screening (PHQ-9)
	{ID: "PHQ-9", Name: "PHQ-9 Self-harm risk (Q9: answer 1-3)", Priority: "P0", Category: "Mental Health"},
	{ID: "PHQ-101", Name: "Review PHQ-9 score >= 10", Priority: "P1", Category: "Mental Health"},
	{ID: "PHQ-100", Name: "Review PHQ-9 Question 9", Priority: "P1", Category: "Mental Health"},

	// PROMIS-10 Health Assessment
	{ID: "PRM-101", Name: "Review PROMIS-10 Question 4", Priority: "P2", Category: "Health Assessment"},
	{ID: "PRM-102", Name: "Review PROMIS-10 Question 10", Priority: "P2", Category: "Health Assessment"},
	{ID: "PRM-103", Name: "Review PROMIS-10 Question 6", Priority: "P2", Category: "Health Assessment"},
	{ID: "PRM-104", Name: "Review PROMIS-10 Question 7", Priority: "P2", Category: "Health Assessment"},

	// Surveys
	{ID: "SRV-100", Name: "Review DDAS - T1D", Priority: "P3", Category: "Surveys"},
	{ID: "SRV-101", Name: "Review DDAS - T2D", Priority: "P3", Category: "Surveys"},
	{ID: "SRV-102", Name: "Review PROMIS-10", Priority: "P3", Category: "Surveys"},
	{ID: "SRV-103", Name: "Review Nutrition Baseline", Priority: "P3", Category: "Surveys"},

	// Custom Tasks
	{ID: "TODO-100", Name: "Custom Task", Priority: "P3", Category: "Custom"},
}

// ByID returns the catalog entry for the given task code, or nil.
func ByID(id string) *Task {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

// IDs returns every task code in catalog order.
func IDs() []string {
	ids := make([]string, len(Catalog))
	for i, t := range Catalog {
		ids[i] = t.ID
	}
	return ids
}
