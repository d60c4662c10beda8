package patients

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Synthetic patient generation: random template filling across a handful
// of clinical scenarios. Content is plausible, not medically meaningful.

var firstNames = []string{
	"James", "Maria", "Robert", "Jennifer", "Michael", "Lisa", "William", "Nancy",
	"David", "Karen", "Richard", "Betty", "Joseph", "Helen", "Thomas", "Sandra",
	"Charles", "Donna", "Christopher", "Carol", "Daniel", "Ruth", "Matthew", "Sharon",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
}

var scenarios = []string{
	"t2d_hyperglycemia",
	"t2d_controlled",
	"t1d_hypoglycemia",
	"hypertension_uncontrolled",
	"new_member",
	"mental_health_concern",
	"multiple_conditions",
}

func pick(options ...string) string {
	return options[rand.IntN(len(options))]
}

func between(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1)
}

func betweenF(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func daysAgo(lo, hi int) string {
	return time.Now().AddDate(0, 0, -between(lo, hi)).Format("2006-01-02")
}

// Generate produces one synthetic patient record with a stable ID.
func Generate() Record {
	name := pick(firstNames...) + " " + pick(lastNames...)
	age := between(35, 75)

	rec := Record{
		ID: uuid.New(),
		Demographics: Demographics{
			Name:   name,
			Age:    age,
			Gender: pick("Male", "Female"),
			DOB:    time.Now().AddDate(-age, 0, 0).Format("2006-01-02"),
			Phone:  fmt.Sprintf("(555) %d-%d", between(200, 999), between(1000, 9999)),
			Email:  strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@email.com",
		},
	}

	scenario := scenarios[rand.IntN(len(scenarios))]
	fillScenario(&rec, scenario)

	rec.SetSection("participant_overview", mustJSON(map[string]any{
		"clinic_member": pick("Yes", "No", "Unknown"),
	}))

	// Roughly one in five patients has a recent message thread.
	if rand.Float64() < 0.2 {
		rec.SetSection("messages", mustJSON([]map[string]any{{
			"date": daysAgo(0, 3),
			"from": "patient",
			"content": pick(
				"I've been experiencing headaches lately.",
				"My readings have been all over the place this week.",
				"I missed a few doses because I ran out of medication.",
				"Feeling much better after our last conversation, thank you!",
				"Had some questions about the new device.",
			),
		}}))
	}

	return rec
}

// GenerateBatch produces count synthetic records.
func GenerateBatch(count int) []Record {
	out := make([]Record, count)
	for i := range out {
		out[i] = Generate()
	}
	return out
}

func fillScenario(rec *Record, scenario string) {
	switch scenario {
	case "t2d_hyperglycemia":
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    "Type 2 Diabetes",
			"secondary_conditions": []string{"Hypertension"},
			"icd10_codes":          []string{"E11.9", "I10"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{
			"bgm": map[string]string{
				"brand": pick("OneTouch", "Contour", "Accu-Chek"),
				"model": pick("Ultra Mini", "Next One", "Guide"),
			},
			"bp_monitor": map[string]string{
				"brand": pick("Omron", "Withings"),
				"model": pick("BP7350", "BPM Connect"),
			},
		}))
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"hyperglycemic_events": []map[string]any{{
				"date":     daysAgo(1, 1),
				"time":     fmt.Sprintf("%d:%02d PM", between(6, 8), between(10, 50)),
				"bg_value": between(280, 450),
				"context":  pick("Post-dinner spike", "After high-carb meal", "Forgot medication"),
			}},
			"avg_glucose_7day": between(180, 240),
			"time_in_range":    fmt.Sprintf("%d%%", between(15, 40)),
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": "Metformin", "dose": "1000mg", "frequency": "twice daily"},
			{"name": pick("Jardiance", "Ozempic", "Trulicity"), "dose": pick("10mg", "0.5mg", "1.5mg"), "frequency": "once daily"},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c": []map[string]any{{"value": round1(betweenF(8.5, 10.5)), "date": daysAgo(10, 40)}},
		}))

	case "t1d_hypoglycemia":
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    "Type 1 Diabetes",
			"secondary_conditions": pickSecondary(),
			"icd10_codes":          []string{"E10.9"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{
			"cgm": map[string]string{
				"brand":         pick("Dexcom", "FreeStyle"),
				"model":         pick("G7", "Libre 3"),
				"sensor_number": fmt.Sprintf("SN-2024-%d", between(1000, 9999)),
			},
			"insulin_pump": map[string]string{
				"brand": pick("Tandem", "Medtronic", "Omnipod"),
				"model": pick("t:slim X2", "770G", "DASH"),
			},
		}))
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"hypoglycemic_events": []map[string]any{{
				"date":      daysAgo(0, 3),
				"time":      fmt.Sprintf("%d:%02d AM", between(1, 5), between(10, 50)),
				"bg_value":  between(40, 65),
				"context":   pick("Overnight, no warning symptoms", "After exercise", "Overcorrection from meal bolus"),
				"treatment": fmt.Sprintf("%dg glucose tabs", pick8or15or16()),
			}},
			"avg_glucose_7day": between(120, 160),
			"time_in_range":    fmt.Sprintf("%d%%", between(55, 75)),
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": "Insulin via pump", "dose": fmt.Sprintf("Basal %du/day", between(20, 35)), "type": "Automated basal-IQ"},
			{"name": "Glucagon", "dose": "1mg", "frequency": "as needed"},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c": []map[string]any{{"value": round1(betweenF(6.5, 7.5)), "date": daysAgo(30, 90)}},
		}))

	case "hypertension_uncontrolled":
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    pick("Type 2 Diabetes", "Prediabetes"),
			"secondary_conditions": []string{"Hypertension", pick("Hyperlipidemia", "Obesity")},
			"icd10_codes":          []string{"E11.9", "I10", "E78.5"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{
			"bp_monitor": map[string]string{
				"brand": pick("Omron", "Withings", "iHealth"),
				"model": pick("BP7350", "BPM Connect", "Track"),
			},
		}))
		systolic := between(155, 190)
		diastolic := between(95, 115)
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"hypertensive_events": []map[string]any{{
				"date":     daysAgo(0, 2),
				"time":     fmt.Sprintf("%d:%02d AM", between(7, 9), between(10, 50)),
				"bp_value": fmt.Sprintf("%d/%d", systolic, diastolic),
				"context":  pick("Morning reading, after medication", "Evening, stressed from work", "After salty meal"),
			}},
			"avg_bp_7day": fmt.Sprintf("%d/%d", systolic-10, diastolic-5),
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": pick("Lisinopril", "Losartan", "Amlodipine"), "dose": pick("10mg", "50mg", "5mg"), "frequency": "once daily"},
			{"name": "Metformin", "dose": "500mg", "frequency": "twice daily"},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c": []map[string]any{{"value": round1(betweenF(6.8, 8.5)), "date": daysAgo(20, 60)}},
		}))

	case "new_member":
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    pick("Type 2 Diabetes", "Prediabetes"),
			"secondary_conditions": []string{},
			"icd10_codes":          []string{"E11.9"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{}))
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"enrollment_date": daysAgo(0, 7),
			"status":          "Pending initial setup",
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": "Metformin", "dose": "500mg", "frequency": "once daily"},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c": []map[string]any{{"value": round1(betweenF(7.0, 8.5)), "date": daysAgo(30, 90)}},
		}))

	case "mental_health_concern":
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    "Type 2 Diabetes",
			"secondary_conditions": []string{"Depression", "Anxiety"},
			"icd10_codes":          []string{"E11.9", "F33.1", "F41.1"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{
			"bgm": map[string]string{
				"brand": pick("OneTouch", "Contour"),
				"model": pick("Ultra", "Next One"),
			},
		}))
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"avg_glucose_7day":     between(150, 200),
			"medication_adherence": "Poor - frequent missed doses",
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": "Metformin", "dose": "1000mg", "frequency": "twice daily"},
			{"name": pick("Sertraline", "Escitalopram"), "dose": pick("50mg", "10mg"), "frequency": "once daily"},
		}))
		rec.SetSection("surveys", mustJSON(map[string]any{
			"phq9": map[string]any{"score": between(10, 18), "date": daysAgo(1, 14)},
			"ddas": map[string]any{"score": round1(betweenF(3.0, 4.5)), "date": daysAgo(1, 14)},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c": []map[string]any{{"value": round1(betweenF(8.0, 9.5)), "date": daysAgo(30, 90)}},
		}))

	case "multiple_conditions":
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    "Type 2 Diabetes",
			"secondary_conditions": []string{"Hypertension", "Hyperlipidemia", "Stage 3 CKD"},
			"icd10_codes":          []string{"E11.9", "I10", "E78.5", "N18.3"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{
			"bgm": map[string]string{
				"brand": pick("OneTouch", "Contour"),
				"model": pick("Ultra Mini", "Next One"),
			},
			"bp_monitor": map[string]string{"brand": "Omron", "model": "BP7350"},
		}))
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"avg_glucose_7day": between(160, 200),
			"avg_bp_7day":      fmt.Sprintf("%d/%d", between(140, 165), between(85, 95)),
			"time_in_range":    fmt.Sprintf("%d%%", between(40, 60)),
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": "Jardiance", "dose": "25mg", "frequency": "once daily"},
			{"name": "Lisinopril", "dose": "20mg", "frequency": "once daily"},
			{"name": "Atorvastatin", "dose": "40mg", "frequency": "once daily"},
			{"name": "Metformin", "dose": "1000mg", "frequency": "twice daily"},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c":    []map[string]any{{"value": round1(betweenF(7.2, 8.8)), "date": daysAgo(20, 60)}},
			"kidney": map[string]any{"egfr": between(35, 55), "creatinine": round1(betweenF(1.2, 1.8))},
			"lipids": map[string]any{"hdl": between(35, 50), "ldl": between(100, 150), "triglycerides": between(150, 250)},
		}))

	default: // t2d_controlled
		rec.SetSection("conditions", mustJSON(map[string]any{
			"primary_diagnosis":    "Type 2 Diabetes",
			"secondary_conditions": []string{},
			"icd10_codes":          []string{"E11.9"},
		}))
		rec.SetSection("devices", mustJSON(map[string]any{
			"bgm": map[string]string{
				"brand": pick("OneTouch", "Contour"),
				"model": pick("Verio", "Next One"),
			},
		}))
		rec.SetSection("recent_events", mustJSON(map[string]any{
			"avg_glucose_7day": between(110, 145),
			"time_in_range":    fmt.Sprintf("%d%%", between(70, 90)),
		}))
		rec.SetSection("medications", mustJSON([]map[string]string{
			{"name": "Metformin", "dose": "500mg", "frequency": "twice daily"},
		}))
		rec.SetSection("labs", mustJSON(map[string]any{
			"a1c": []map[string]any{{"value": round1(betweenF(6.2, 7.0)), "date": daysAgo(30, 90)}},
		}))
	}
}

func pickSecondary() []string {
	switch rand.IntN(3) {
	case 0:
		return []string{"Hypoglycemia unawareness"}
	case 1:
		return []string{"Celiac disease"}
	default:
		return []string{}
	}
}

func pick8or15or16() int {
	return []int{8, 15, 16}[rand.IntN(3)]
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
