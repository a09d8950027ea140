package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nadmax/planwise/internal/task"
)

type promptTask struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Urgency       task.Level `json:"urgency"`
	Importance    task.Level `json:"importance"`
	Category      string     `json:"category"`
	EstimatedTime int        `json:"estimatedTime"`
	Deadline      string     `json:"deadline,omitempty"`
}

// PriorityPrompt asks for a bare JSON array of {"id", "priority"} objects.
func PriorityPrompt(tasks []task.Task, now time.Time) string {
	list := make([]promptTask, len(tasks))
	for i, t := range tasks {
		list[i] = promptTask{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Urgency:       t.Urgency,
			Importance:    t.Importance,
			Category:      t.Category,
			EstimatedTime: t.EstimatedTime,
		}
		if t.Deadline != nil {
			list[i].Deadline = t.Deadline.UTC().Format(time.RFC3339)
		}
	}

	data, _ := json.MarshalIndent(list, "", "  ")

	var b strings.Builder
	b.WriteString("You are a productivity expert helping a user beat decision fatigue.\n")
	fmt.Fprintf(&b, "Current time: %s\n\n", now.UTC().Format(time.RFC3339))
	b.WriteString("Assign each task below a priority score from 1 to 100 (100 = do it first).\n")
	b.WriteString("Weigh urgency, importance, deadline proximity and estimated time in minutes.\n\n")
	b.WriteString("Tasks:\n")
	b.Write(data)
	b.WriteString("\n\nRespond ONLY with a JSON array, one object per task, in this exact shape:\n")
	b.WriteString(`[{"id": "<task id>", "priority": <integer 1-100>}]`)
	b.WriteString("\nDo not add commentary or markdown.")

	return b.String()
}

// RecipePrompt asks for a recipe in the layout recipe.Extract parses.
func RecipePrompt(ingredients []string) string {
	var b strings.Builder
	b.WriteString("Create a recipe using these ingredients: ")
	b.WriteString(strings.Join(ingredients, ", "))
	b.WriteString(".\n\nFormat the answer exactly like this:\n")
	b.WriteString("Recipe Title;\n")
	b.WriteString("**Ingredients:**\n* ingredient with quantity\n")
	b.WriteString("**Instructions:**\n1. first step\n2. second step\n")
	b.WriteString("**Total Cooking Time:**\nnumber of minutes\n")
	b.WriteString("**Difficulty Level:**\nEasy, Medium or Hard\n")

	return b.String()
}

type TripRequest struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Days    int    `json:"days"`
}

func TripPrompt(r TripRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a travel assistant helping a client plan their trip. The client is visiting %s, %s, %s for %d days.\n\n",
		r.City, r.State, r.Country, r.Days)
	b.WriteString("Please create a detailed and user-friendly travel itinerary that includes the following:\n")
	b.WriteString("1. **Daily Schedule**: a day-by-day breakdown of activities, must-visit attractions and cultural landmarks.\n")
	b.WriteString("2. **Dining Recommendations**: restaurants or cafes for each day, considering local cuisine.\n")
	b.WriteString("3. **Travel Tips**: transportation options, local customs and safety tips.\n")
	b.WriteString("4. **Essential Information**: weather considerations, packing tips and local events.\n")
	b.WriteString("5. **Culture and History**: cultural heritage and historical landmarks.\n")
	b.WriteString("6. **Safety and Accessibility**: safety concerns and accessibility recommendations.\n\n")
	b.WriteString("Keep the itinerary concise, engaging and easy to follow.")

	return b.String()
}
